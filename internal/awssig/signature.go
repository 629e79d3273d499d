// Package awssig implements the AWS4-HMAC-SHA256 request signature used
// by the object storage endpoints. The canonical header block matches
// what the web client signs: the date header, the security token and,
// for bodied POSTs, the payload hash. The host header is deliberately
// not part of the signed set.
package awssig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	algorithm   = "AWS4-HMAC-SHA256"
	serviceName = "imagex"

	DateHeader          = "x-amz-date"
	SecurityTokenHeader = "x-amz-security-token"
	ContentSHA256Header = "x-amz-content-sha256"
)

// Sign computes the Authorization header value for one request. The
// request timestamp is read from the lowercased x-amz-date header
// (ISO basic, e.g. 20260115T093000Z), the signing region is supplied by
// the caller since it varies per deployment.
func Sign(method, rawURL string, headers map[string]string, accessKeyID, secretAccessKey, sessionToken, payload, region string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	pathname := parsedURL.Path
	if pathname == "" {
		pathname = "/"
	}

	timestamp := headers[DateHeader]
	if len(timestamp) < 8 {
		return "", fmt.Errorf("missing %s header", DateHeader)
	}
	date := timestamp[:8]

	canonicalQueryString := canonicalQuery(parsedURL.Query())

	headersToSign := map[string]string{
		DateHeader: timestamp,
	}
	if sessionToken != "" {
		headersToSign[SecurityTokenHeader] = sessionToken
	}

	payloadHash := sha256Hex("")
	if strings.ToUpper(method) == "POST" && payload != "" {
		payloadHash = sha256Hex(payload)
		headersToSign[ContentSHA256Header] = payloadHash
	}

	signedHeaderNames := make([]string, 0, len(headersToSign))
	for name := range headersToSign {
		signedHeaderNames = append(signedHeaderNames, strings.ToLower(name))
	}
	sort.Strings(signedHeaderNames)
	signedHeaders := strings.Join(signedHeaderNames, ";")

	var canonicalHeaders strings.Builder
	for _, name := range signedHeaderNames {
		canonicalHeaders.WriteString(name + ":" + strings.TrimSpace(headersToSign[name]) + "\n")
	}

	canonicalRequest := strings.Join([]string{
		strings.ToUpper(method),
		pathname,
		canonicalQueryString,
		canonicalHeaders.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	credentialScope := strings.Join([]string{date, region, serviceName, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		algorithm,
		timestamp,
		credentialScope,
		sha256Hex(canonicalRequest),
	}, "\n")

	kDate := hmacSHA256([]byte("AWS4"+secretAccessKey), date)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, serviceName)
	kSigning := hmacSHA256(kService, "aws4_request")
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s", algorithm, accessKeyID, credentialScope, signedHeaders, signature), nil
}

// canonicalQuery lexicographically sorts the query parameters by key.
// Values are joined as-is, the storage api parameters are unreserved.
func canonicalQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, value := range query[key] {
			pairs = append(pairs, key+"="+value)
		}
	}
	return strings.Join(pairs, "&")
}

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
