package dreamina

import (
	"context"
	"fmt"
	"time"
)

var (
	DreaminaServiceApp *DreaminaService

	ErrRecordIDNotFound = fmt.Errorf("记录ID不存在")
)

func init() {
	DreaminaServiceApp = &DreaminaService{}
}

type DreaminaServiceConfig struct {
	DefaultToken string `mapstructure:"defaultToken"`

	MaxRetryCount int `mapstructure:"maxRetryCount"`

	RetryDelaySeconds int `mapstructure:"retryDelaySeconds"`
}

// DreaminaService relays generation jobs to the regional upstream
// deployments through one shared client.
type DreaminaService struct {
	config DreaminaServiceConfig

	client *Client
}

func (s *DreaminaService) Start(config DreaminaServiceConfig) {
	s.config = config
	retry := DefaultRetryPolicy
	if config.MaxRetryCount > 0 {
		retry.MaxRetries = config.MaxRetryCount
	}
	if config.RetryDelaySeconds > 0 {
		retry.Delay = time.Duration(config.RetryDelaySeconds) * time.Second
	}
	s.client = NewClient(ClientConfig{Retry: &retry})
}

func (s *DreaminaService) DefaultToken() string {
	return s.config.DefaultToken
}

func (s *DreaminaService) SubmitImageTask(ctx context.Context, model, prompt string, opts GenerationOptions, refreshToken string) (taskID, submitID string, err error) {
	return s.client.SubmitImageTask(ctx, model, prompt, opts, refreshToken)
}

func (s *DreaminaService) SubmitCompositionTask(ctx context.Context, model, prompt string, imageSources []string, opts GenerationOptions, refreshToken string) (taskID, submitID string, err error) {
	return s.client.SubmitCompositionTask(ctx, model, prompt, imageSources, opts, refreshToken)
}

func (s *DreaminaService) GetTaskStatus(ctx context.Context, taskID, refreshToken string) TaskStatus {
	return s.client.GetTaskStatus(ctx, taskID, refreshToken)
}

func (s *DreaminaService) GetHistoryBySubmitIDs(ctx context.Context, submitIDs []string, refreshToken string) ([]HistoryRecord, error) {
	return s.client.GetHistoryBySubmitIDs(ctx, submitIDs, refreshToken)
}

func (s *DreaminaService) GetCredit(ctx context.Context, refreshToken string) (CreditInfo, error) {
	return s.client.GetCredit(ctx, refreshToken)
}

func (s *DreaminaService) ReceiveCredit(ctx context.Context, refreshToken string) (int, error) {
	return s.client.ReceiveCredit(ctx, refreshToken)
}
