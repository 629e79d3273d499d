package model

import "encoding/json"

type GenerationTaskRequest struct {
	Model string `json:"model"`

	Prompt string `json:"prompt"`

	NegativePrompt string `json:"negative_prompt"`

	Ratio string `json:"ratio"`

	Resolution string `json:"resolution"`

	SampleStrength float64 `json:"sample_strength"`

	Seed int64 `json:"seed"`

	IntelligentRatio bool `json:"intelligent_ratio"`
}

// ImageRef accepts either a bare url string or an {url: ...} object.
type ImageRef struct {
	URL string
}

func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		r.URL = asString
		return nil
	}
	var asObject struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return err
	}
	r.URL = asObject.URL
	return nil
}

type CompositionTaskRequest struct {
	GenerationTaskRequest

	Images []ImageRef `json:"images"`
}

type TaskCreatedResponse struct {
	TaskId string `json:"task_id"`

	SubmitId string `json:"submit_id"`

	Status string `json:"status"`

	Message string `json:"message,omitempty"`

	InputImages int `json:"input_images,omitempty"`

	Created int64 `json:"created"`
}

type HistoryRequest struct {
	SubmitIds []string `json:"submit_ids"`
}

type HistoryResponse struct {
	Created int64 `json:"created"`

	Data interface{} `json:"data"`
}

type ModelInfo struct {
	Id string `json:"id"`

	Object string `json:"object"`

	Created int64 `json:"created"`

	OwnedBy string `json:"owned_by"`
}

type ModelListResponse struct {
	Object string `json:"object"`

	Data []ModelInfo `json:"data"`
}

type ErrorDetail struct {
	Message string `json:"message"`

	Type string `json:"type"`

	Code int `json:"code"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
