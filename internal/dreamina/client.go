package dreamina

import (
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haojie06/dreamina-http/internal/logger"
)

// ClientConfig overrides are optional, zero values pick the defaults.
type ClientConfig struct {
	HTTPClient *http.Client
	Retry      *RetryPolicy
	Hosts      HostTable
	Storage    StorageTable
}

// Client dispatches signed requests to one regional api deployment. The
// web/user identifiers act as a stable browser fingerprint for the
// lifetime of the client, they are fields here instead of process globals
// so concurrent clients and tests stay independent.
type Client struct {
	httpClient *http.Client

	webID  int64
	userID string

	retry   RetryPolicy
	hosts   HostTable
	storage StorageTable

	logger *logger.CustomLogger
}

func NewClient(config ClientConfig) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	retry := DefaultRetryPolicy
	if config.Retry != nil {
		retry = *config.Retry
	}
	hosts := config.Hosts
	if hosts == nil {
		hosts = DefaultHosts
	}
	storage := config.Storage
	if storage == nil {
		storage = DefaultStorage
	}
	randGenerator := rand.New(rand.NewSource(time.Now().UnixNano()))
	client := &Client{
		httpClient: httpClient,
		webID:      7000000000000000000 + randGenerator.Int63n(999999999999999999),
		userID:     strings.ReplaceAll(uuid.New().String(), "-", ""),
		retry:      retry,
		hosts:      hosts,
		storage:    storage,
	}
	client.logger = logger.NewCustomLogger().With("webId", client.webID)
	return client
}

// APIError is a classified upstream failure. Terminal codes abort the
// dispatcher retry loop immediately, all others are retried up to the
// policy limit.
type APIError struct {
	Code      int
	Message   string
	Retryable bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API错误 [%d]: %s", e.Code, e.Message)
}

func isNonRetryableCode(code int) bool {
	_, exists := nonRetryableErrorCodes[code]
	return exists
}
