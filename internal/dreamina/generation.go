package dreamina

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerationOptions tune one submitted job, zero values pick the
// upstream defaults.
type GenerationOptions struct {
	Ratio string

	Resolution string

	SampleStrength float64

	NegativePrompt string

	Seed int64

	IntelligentRatio bool
}

func (o *GenerationOptions) applyDefaults() {
	if o.Ratio == "" {
		o.Ratio = defaultRatio
	}
	if o.Resolution == "" {
		o.Resolution = defaultResolution
	}
	if o.SampleStrength == 0 {
		o.SampleStrength = 0.5
	}
}

type resolvedResolution struct {
	Width          int
	Height         int
	ImageRatio     int
	ResolutionType string
}

// resolveModel maps a public model name to its internal code, unknown
// names fall back to the per-region default model.
func resolveModel(model string, international bool) (internalModel, userModel string) {
	modelMap := ImageModelMap
	defaultModel := DefaultImageModel
	if international {
		modelMap = ImageModelMapUS
		defaultModel = DefaultImageModelUS
	}
	if _, exists := modelMap[model]; !exists {
		return modelMap[defaultModel], defaultModel
	}
	return modelMap[model], model
}

// resolveResolution never fails: an unknown resolution class falls back
// to 2k, an unknown ratio to 1:1.
func resolveResolution(resolution, ratio string) resolvedResolution {
	group, exists := ResolutionOptions[resolution]
	if !exists {
		return resolveResolution(defaultResolution, ratio)
	}
	config, exists := group[ratio]
	if !exists {
		return resolveResolution(resolution, defaultRatio)
	}
	return resolvedResolution{
		Width:          config.Width,
		Height:         config.Height,
		ImageRatio:     config.Ratio,
		ResolutionType: resolution,
	}
}

// benefitCount only applies on the international sites.
func benefitCount(userModel string, regionInfo RegionInfo) (int, bool) {
	if regionInfo.IsCN {
		return 0, false
	}
	if regionInfo.IsUS {
		switch userModel {
		case "jimeng-4.5", "jimeng-4.0", "jimeng-3.0", "dreamina-4.5", "dreamina-4.0":
			return 4, true
		}
		return 0, false
	}
	if userModel == "nanobanana" {
		return 0, false
	}
	return 4, true
}

func buildCoreParam(model, prompt string, opts GenerationOptions, resolution resolvedResolution) map[string]interface{} {
	coreParam := map[string]interface{}{
		"type":            "",
		"id":              uuid.New().String(),
		"model":           model,
		"prompt":          prompt,
		"sample_strength": opts.SampleStrength,
		"large_image_info": map[string]interface{}{
			"type":            "",
			"id":              uuid.New().String(),
			"min_version":     DraftMinVersion,
			"height":          resolution.Height,
			"width":           resolution.Width,
			"resolution_type": resolution.ResolutionType,
		},
		"intelligent_ratio": opts.IntelligentRatio,
	}
	if !opts.IntelligentRatio {
		coreParam["image_ratio"] = resolution.ImageRatio
	}
	if opts.NegativePrompt != "" {
		coreParam["negative_prompt"] = opts.NegativePrompt
	}
	if opts.Seed != 0 {
		coreParam["seed"] = opts.Seed
	}
	return coreParam
}

// buildMetricsExtra produces the metrics block, its JSON is embedded in
// the job payload as a string field (and the scene options are a string
// inside that string, matching the web client).
func buildMetricsExtra(userModel string, regionInfo RegionInfo, submitID, resolutionType string, abilityList []interface{}) (string, error) {
	if abilityList == nil {
		abilityList = []interface{}{}
	}
	sceneOption := map[string]interface{}{
		"type":           "image",
		"scene":          "ImageBasicGenerate",
		"modelReqKey":    userModel,
		"resolutionType": resolutionType,
		"abilityList":    abilityList,
		"reportParams": map[string]interface{}{
			"enterSource":                      "generate",
			"vipSource":                        "generate",
			"extraVipFunctionKey":              userModel + "-" + resolutionType,
			"useVipFunctionDetailsReporterHoc": true,
		},
	}
	if count, applies := benefitCount(userModel, regionInfo); applies {
		sceneOption["benefitCount"] = count
	}
	sceneOptions, err := json.Marshal([]interface{}{sceneOption})
	if err != nil {
		return "", err
	}
	metrics, err := json.Marshal(map[string]interface{}{
		"promptSource":  "custom",
		"generateCount": 1,
		"enterFrom":     "click",
		"sceneOptions":  string(sceneOptions),
		"generateId":    submitID,
		"isRegenerate":  false,
	})
	return string(metrics), err
}

func draftComponentMetadata() map[string]interface{} {
	return map[string]interface{}{
		"type":                     "",
		"id":                       uuid.New().String(),
		"created_platform":         3,
		"created_platform_version": "",
		"created_time_in_ms":       strconv.FormatInt(time.Now().UnixMilli(), 10),
		"created_did":              "",
	}
}

func buildDraftContent(componentID string, coreParam map[string]interface{}) (string, error) {
	draft := map[string]interface{}{
		"type":              "draft",
		"id":                uuid.New().String(),
		"min_version":       DraftMinVersion,
		"min_features":      []interface{}{},
		"is_from_tsn":       true,
		"version":           DraftVersion,
		"main_component_id": componentID,
		"component_list": []interface{}{
			map[string]interface{}{
				"type":          "image_base_component",
				"id":            componentID,
				"min_version":   DraftMinVersion,
				"aigc_mode":     "workbench",
				"metadata":      draftComponentMetadata(),
				"generate_type": "generate",
				"abilities": map[string]interface{}{
					"type": "",
					"id":   uuid.New().String(),
					"generate": map[string]interface{}{
						"type":       "",
						"id":         uuid.New().String(),
						"core_param": coreParam,
					},
					"gen_option": map[string]interface{}{
						"type":         "",
						"id":           uuid.New().String(),
						"generate_all": false,
					},
				},
			},
		},
	}
	content, err := json.Marshal(draft)
	return string(content), err
}

type generateResponse struct {
	AigcData struct {
		HistoryRecordID string `json:"history_record_id"`
	} `json:"aigc_data"`
}

// submitDraft sends one assembled job payload and extracts the
// history-record id, its absence means the job was not created.
func (c *Client) submitDraft(ctx context.Context, refreshToken, submitID, internalModel, metricsExtra, draftContent string, aid int) (string, error) {
	requestData := map[string]interface{}{
		"extend": map[string]interface{}{
			"root_model": internalModel,
		},
		"submit_id":     submitID,
		"metrics_extra": metricsExtra,
		"draft_content": draftContent,
		"http_common_info": map[string]interface{}{
			"aid": aid,
		},
	}
	data, err := c.Do(ctx, "POST", "/mweb/v1/aigc_draft/generate", refreshToken, RequestOptions{Data: requestData})
	if err != nil {
		return "", err
	}
	var response generateResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return "", err
	}
	if response.AigcData.HistoryRecordID == "" {
		c.logger.Errorf("generate response carries no history record id: %s", truncateForLog(string(data), 500))
		return "", ErrRecordIDNotFound
	}
	return response.AigcData.HistoryRecordID, nil
}

// SubmitImageTask submits a text-to-image job and returns the upstream
// task id with the caller correlation id, it does not wait for results.
func (c *Client) SubmitImageTask(ctx context.Context, model, prompt string, opts GenerationOptions, refreshToken string) (taskID, submitID string, err error) {
	opts.applyDefaults()
	regionInfo := ParseRegionFromToken(refreshToken)
	internalModel, userModel := resolveModel(model, regionInfo.IsInternational)
	resolution := resolveResolution(opts.Resolution, opts.Ratio)
	c.logger.Infof("submitting image task, model: %s -> %s, %dx%d, region: %s", userModel, internalModel, resolution.Width, resolution.Height, regionInfo.Region)

	if opts.Seed == 0 {
		opts.Seed = 2500000000 + rand.Int63n(100000000)
	}

	componentID := uuid.New().String()
	submitID = uuid.New().String()

	coreParam := buildCoreParam(internalModel, prompt, opts, resolution)
	metricsExtra, err := buildMetricsExtra(userModel, regionInfo, submitID, resolution.ResolutionType, nil)
	if err != nil {
		return "", "", err
	}
	draftContent, err := buildDraftContent(componentID, coreParam)
	if err != nil {
		return "", "", err
	}

	taskID, err = c.submitDraft(ctx, refreshToken, submitID, internalModel, metricsExtra, draftContent, regionInfo.AssistantID())
	if err != nil {
		return "", "", err
	}
	c.logger.Infof("image task submitted, task_id: %s, submit_id: %s", taskID, submitID)
	return taskID, submitID, nil
}

// SubmitCompositionTask submits an image-to-image job. Source images are
// uploaded strictly one at a time, the first failure aborts the whole
// submission so no job ever references a partial upload.
func (c *Client) SubmitCompositionTask(ctx context.Context, model, prompt string, imageSources []string, opts GenerationOptions, refreshToken string) (taskID, submitID string, err error) {
	opts.applyDefaults()
	regionInfo := ParseRegionFromToken(refreshToken)
	internalModel, userModel := resolveModel(model, regionInfo.IsInternational)
	resolution := resolveResolution(opts.Resolution, opts.Ratio)
	imageCount := len(imageSources)
	c.logger.Infof("submitting composition task, model: %s, images: %d, region: %s", userModel, imageCount, regionInfo.Region)

	uploadedImageIDs := make([]string, 0, imageCount)
	for i, imageSource := range imageSources {
		imageID, uploadErr := c.UploadImage(ctx, imageSource, refreshToken)
		if uploadErr != nil {
			return "", "", fmt.Errorf("图片上传失败 (%d/%d): %w", i+1, imageCount, uploadErr)
		}
		c.logger.Infof("image %d/%d uploaded: %s", i+1, imageCount, imageID)
		uploadedImageIDs = append(uploadedImageIDs, imageID)
	}

	componentID := uuid.New().String()
	submitID = uuid.New().String()

	// the web client prefixes the prompt with two marker characters per
	// source image
	prefixedPrompt := strings.Repeat("#", imageCount*2) + prompt
	blendOpts := opts
	blendOpts.IntelligentRatio = false
	coreParam := buildCoreParam(internalModel, prefixedPrompt, blendOpts, resolution)

	abilityList := make([]interface{}, 0, imageCount)
	placeholderList := make([]interface{}, 0, imageCount)
	metricsAbilityList := make([]interface{}, 0, imageCount)
	for index, imageID := range uploadedImageIDs {
		abilityList = append(abilityList, map[string]interface{}{
			"type":           "",
			"id":             uuid.New().String(),
			"name":           "byte_edit",
			"image_uri_list": []string{imageID},
			"image_list": []interface{}{
				map[string]interface{}{
					"type":          "image",
					"id":            uuid.New().String(),
					"source_from":   "upload",
					"platform_type": 1,
					"name":          "",
					"image_uri":     imageID,
					"width":         0,
					"height":        0,
					"format":        "",
					"uri":           imageID,
				},
			},
			"strength": opts.SampleStrength,
		})
		placeholderList = append(placeholderList, map[string]interface{}{
			"type":          "",
			"id":            uuid.New().String(),
			"ability_index": index,
		})
		metricsAbilityList = append(metricsAbilityList, map[string]interface{}{
			"abilityName": "byte_edit",
			"strength":    opts.SampleStrength,
			"source": map[string]interface{}{
				"imageUrl": "blob:https://dreamina.capcut.com/" + uuid.New().String(),
			},
		})
	}

	metricsExtra, err := buildMetricsExtra(userModel, regionInfo, submitID, resolution.ResolutionType, metricsAbilityList)
	if err != nil {
		return "", "", err
	}

	blend := map[string]interface{}{
		"type":                         "",
		"id":                           uuid.New().String(),
		"min_features":                 []interface{}{},
		"core_param":                   coreParam,
		"ability_list":                 abilityList,
		"prompt_placeholder_info_list": placeholderList,
		"postedit_param": map[string]interface{}{
			"type":          "",
			"id":            uuid.New().String(),
			"generate_type": 0,
		},
	}
	if imageCount >= 2 {
		blend["min_version"] = "3.2.9"
	}
	draft := map[string]interface{}{
		"type":              "draft",
		"id":                uuid.New().String(),
		"min_version":       "3.2.9",
		"min_features":      []interface{}{},
		"is_from_tsn":       true,
		"version":           DraftVersion,
		"main_component_id": componentID,
		"component_list": []interface{}{
			map[string]interface{}{
				"type":          "image_base_component",
				"id":            componentID,
				"min_version":   DraftMinVersion,
				"aigc_mode":     "workbench",
				"metadata":      draftComponentMetadata(),
				"generate_type": "blend",
				"abilities": map[string]interface{}{
					"type":  "",
					"id":    uuid.New().String(),
					"blend": blend,
					"gen_option": map[string]interface{}{
						"type":         "",
						"id":           uuid.New().String(),
						"generate_all": false,
					},
				},
			},
		},
	}
	draftContent, err := json.Marshal(draft)
	if err != nil {
		return "", "", err
	}

	taskID, err = c.submitDraft(ctx, refreshToken, submitID, internalModel, metricsExtra, string(draftContent), regionInfo.AssistantID())
	if err != nil {
		return "", "", err
	}
	c.logger.Infof("composition task submitted, task_id: %s, submit_id: %s", taskID, submitID)
	return taskID, submitID, nil
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
