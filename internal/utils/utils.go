package utils

import (
	"math/rand"
	"strings"
)

// TokenSplit extracts credential tokens from an Authorization header
// value, multiple tokens may be comma separated.
func TokenSplit(authorization string) []string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(authorization), "Bearer"))
	if trimmed == "" {
		return nil
	}
	tokens := make([]string, 0, 1)
	for _, token := range strings.Split(trimmed, ",") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// SampleToken picks one token at random for simple account rotation.
func SampleToken(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return tokens[rand.Intn(len(tokens))]
}
