package dreamina

import (
	"context"
	"encoding/json"
)

type HistoryImage struct {
	ID              string `json:"id"`
	ImageURL        string `json:"image_url"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Format          string `json:"format"`
	Description     string `json:"description,omitempty"`
	ReferencePrompt string `json:"reference_prompt,omitempty"`
}

type HistoryRecord struct {
	SubmitID           string         `json:"submit_id"`
	Status             int            `json:"status"`
	FailCode           string         `json:"fail_code,omitempty"`
	FailMsg            string         `json:"fail_msg,omitempty"`
	GenerateType       int            `json:"generate_type"`
	HistoryRecordID    string         `json:"history_record_id"`
	FinishTime         int64          `json:"finish_time"`
	TotalImageCount    int            `json:"total_image_count"`
	FinishedImageCount int            `json:"finished_image_count"`
	Images             []HistoryImage `json:"images"`
}

// GetHistoryBySubmitIDs batch-looks records up by the caller correlation
// ids, submit ids with no record are skipped.
func (c *Client) GetHistoryBySubmitIDs(ctx context.Context, submitIDs []string, refreshToken string) ([]HistoryRecord, error) {
	data, err := c.Do(ctx, "POST", "/mweb/v1/get_history_by_ids", refreshToken, RequestOptions{
		Data: map[string]interface{}{
			"submit_ids": submitIDs,
		},
	})
	if err != nil {
		return nil, err
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	histories := make([]HistoryRecord, 0, len(submitIDs))
	for _, submitID := range submitIDs {
		rawRecord, exists := records[submitID]
		if !exists || string(rawRecord) == "null" {
			c.logger.Warnf("no history record for submit_id %s", submitID)
			continue
		}
		var record generationRecord
		if err := json.Unmarshal(rawRecord, &record); err != nil {
			return nil, err
		}

		generateType := record.GenerateType
		if generateType == 0 {
			generateType = 1
		}
		history := HistoryRecord{
			SubmitID:           submitID,
			Status:             record.Status,
			FailCode:           string(record.FailCode),
			FailMsg:            record.FailMsg,
			GenerateType:       generateType,
			HistoryRecordID:    record.HistoryRecordID,
			FinishTime:         record.FinishTime,
			TotalImageCount:    record.TotalImageCount,
			FinishedImageCount: record.FinishedImageCount,
			Images:             make([]HistoryImage, 0, len(record.ItemList)),
		}
		for _, item := range record.ItemList {
			image := HistoryImage{Format: "jpeg"}
			if item.CommonAttr != nil {
				image.ID = item.CommonAttr.ID
				image.ImageURL = item.CommonAttr.CoverURL
				image.Width = item.CommonAttr.CoverWidth
				image.Height = item.CommonAttr.CoverHeight
				image.Description = item.CommonAttr.Description
			}
			if item.Image != nil {
				if item.Image.Format != "" {
					image.Format = item.Image.Format
				}
				if len(item.Image.LargeImages) > 0 {
					large := item.Image.LargeImages[0]
					image.ImageURL = large.ImageURL
					image.Width = large.Width
					image.Height = large.Height
					if large.Format != "" {
						image.Format = large.Format
					}
				}
			}
			if item.AigcImageParams != nil {
				image.ReferencePrompt = item.AigcImageParams.ReferencePrompt
			}
			history.Images = append(history.Images, image)
		}
		histories = append(histories, history)
	}
	return histories, nil
}
