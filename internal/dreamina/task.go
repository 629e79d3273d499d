package dreamina

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

// upstream record status codes
const (
	recordStatusSuccess   = 10
	recordStatusFailed    = 30
	recordStatusCompleted = 50
)

// TaskStatus is a point-in-time snapshot of one job, recomputed fresh
// from the upstream polling response on every query.
type TaskStatus struct {
	TaskID    string   `json:"task_id"`
	Status    string   `json:"status"`
	Progress  int      `json:"progress,omitempty"`
	Images    []string `json:"images,omitempty"`
	Error     string   `json:"error,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

type generationItem struct {
	Image *struct {
		LargeImages []struct {
			ImageURL string `json:"image_url"`
			Width    int    `json:"width"`
			Height   int    `json:"height"`
			Format   string `json:"format"`
		} `json:"large_images"`
		Format string `json:"format"`
	} `json:"image"`
	CommonAttr *struct {
		ID          string            `json:"id"`
		CoverURL    string            `json:"cover_url"`
		CoverWidth  int               `json:"cover_width"`
		CoverHeight int               `json:"cover_height"`
		CoverURLMap map[string]string `json:"cover_url_map"`
		Description string            `json:"description"`
	} `json:"common_attr"`
	AigcImageParams *struct {
		ReferencePrompt string `json:"reference_prompt"`
	} `json:"aigc_image_params"`
	ImageURL string `json:"image_url"`
	URL      string `json:"url"`
}

// failCode tolerates both string and numeric upstream encodings.
type failCode string

func (f *failCode) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if trimmed == "null" {
		trimmed = ""
	}
	*f = failCode(trimmed)
	return nil
}

type generationRecord struct {
	Status             int              `json:"status"`
	FailCode           failCode         `json:"fail_code"`
	FailMsg            string           `json:"fail_msg"`
	GenerateType       int              `json:"generate_type"`
	HistoryRecordID    string           `json:"history_record_id"`
	FinishTime         int64            `json:"finish_time"`
	ItemList           []generationItem `json:"item_list"`
	TotalImageCount    int              `json:"total_image_count"`
	FinishedImageCount int              `json:"finished_image_count"`
}

// the upstream result schema is under-specified, each extractor knows one
// observed shape and they are tried in priority order
var imageURLExtractors = []func(item generationItem) string{
	func(item generationItem) string {
		if item.Image != nil && len(item.Image.LargeImages) > 0 {
			return item.Image.LargeImages[0].ImageURL
		}
		return ""
	},
	func(item generationItem) string {
		if item.CommonAttr != nil {
			return item.CommonAttr.CoverURL
		}
		return ""
	},
	func(item generationItem) string { return item.ImageURL },
	func(item generationItem) string { return item.URL },
}

// extractImageURLs keeps item order, items with no recognizable field are
// dropped rather than replaced by a placeholder.
func extractImageURLs(items []generationItem) []string {
	imageURLs := make([]string, 0, len(items))
	for _, item := range items {
		for _, extract := range imageURLExtractors {
			if imageURL := extract(item); imageURL != "" {
				imageURLs = append(imageURLs, imageURL)
				break
			}
		}
	}
	return imageURLs
}

// pollImageInfo asks the upstream for the renditions the web client uses.
var pollImageInfo = map[string]interface{}{
	"width":  2048,
	"height": 2048,
	"format": "webp",
	"image_scene_list": []interface{}{
		map[string]interface{}{"scene": "smart_crop", "width": 360, "height": 360, "uniq_key": "smart_crop-w:360-h:360", "format": "webp"},
		map[string]interface{}{"scene": "smart_crop", "width": 480, "height": 480, "uniq_key": "smart_crop-w:480-h:480", "format": "webp"},
		map[string]interface{}{"scene": "smart_crop", "width": 720, "height": 720, "uniq_key": "smart_crop-w:720-h:720", "format": "webp"},
		map[string]interface{}{"scene": "normal", "width": 2400, "height": 2400, "uniq_key": "2400", "format": "webp"},
		map[string]interface{}{"scene": "normal", "width": 1080, "height": 1080, "uniq_key": "1080", "format": "webp"},
		map[string]interface{}{"scene": "normal", "width": 720, "height": 720, "uniq_key": "720", "format": "webp"},
		map[string]interface{}{"scene": "normal", "width": 480, "height": 480, "uniq_key": "480", "format": "webp"},
		map[string]interface{}{"scene": "normal", "width": 360, "height": 360, "uniq_key": "360", "format": "webp"},
	},
}

// GetTaskStatus polls one job and translates the raw record into a Task
// snapshot. It never fails: any query error yields a failed snapshot so
// polling callers need no error handling of their own.
func (c *Client) GetTaskStatus(ctx context.Context, taskID, refreshToken string) TaskStatus {
	status, err := c.queryTaskStatus(ctx, taskID, refreshToken)
	if err != nil {
		c.logger.Errorf("failed to query task %s: %s", taskID, err)
		return TaskStatus{
			TaskID:    taskID,
			Status:    TaskStatusFailed,
			Error:     err.Error(),
			CreatedAt: time.Now().UnixMilli(),
		}
	}
	return status
}

func (c *Client) queryTaskStatus(ctx context.Context, taskID, refreshToken string) (TaskStatus, error) {
	data, err := c.Do(ctx, "POST", "/mweb/v1/get_history_by_ids", refreshToken, RequestOptions{
		Data: map[string]interface{}{
			"history_ids": []string{taskID},
			"image_info":  pollImageInfo,
		},
	})
	if err != nil {
		return TaskStatus{}, err
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return TaskStatus{}, err
	}
	rawRecord, exists := records[taskID]
	if !exists || string(rawRecord) == "null" {
		return TaskStatus{
			TaskID:    taskID,
			Status:    TaskStatusFailed,
			Error:     "任务不存在",
			CreatedAt: time.Now().UnixMilli(),
		}, nil
	}
	var record generationRecord
	if err := json.Unmarshal(rawRecord, &record); err != nil {
		return TaskStatus{}, err
	}
	return translateRecord(taskID, record), nil
}

// translateRecord maps the raw record status into the finite task state.
func translateRecord(taskID string, record generationRecord) TaskStatus {
	now := time.Now().UnixMilli()
	images := extractImageURLs(record.ItemList)

	totalCount := record.TotalImageCount
	if totalCount == 0 {
		totalCount = 4
	}
	finishedCount := record.FinishedImageCount
	if finishedCount == 0 {
		finishedCount = len(record.ItemList)
	}
	progress := int(math.Round(float64(finishedCount) / float64(totalCount) * 100))

	switch record.Status {
	case recordStatusSuccess, recordStatusCompleted:
		return TaskStatus{
			TaskID:    taskID,
			Status:    TaskStatusCompleted,
			Progress:  100,
			Images:    images,
			CreatedAt: now,
		}
	case recordStatusFailed:
		errorMessage := fmt.Sprintf("生成失败，错误代码: %s", record.FailCode)
		if record.FailCode == "2038" {
			errorMessage = "内容由于合规问题已被阻止生成"
		}
		return TaskStatus{
			TaskID:    taskID,
			Status:    TaskStatusFailed,
			Error:     errorMessage,
			CreatedAt: now,
		}
	}

	status := TaskStatusPending
	if len(images) > 0 {
		status = TaskStatusProcessing
	}
	return TaskStatus{
		TaskID:    taskID,
		Status:    status,
		Progress:  progress,
		Images:    images,
		CreatedAt: now,
	}
}
