package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/logger"
	"github.com/haojie06/dreamina-http/internal/model"
	"github.com/haojie06/dreamina-http/internal/utils"
)

const maxCompositionImages = 10

func CreateCompositionTask(c *gin.Context) {
	var req model.CompositionTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinFailedWithMessage(c, 400, err.Error())
		return
	}
	if req.Prompt == "" {
		utils.GinFailedWithMessage(c, 400, "prompt 参数是必填的")
		return
	}
	if len(req.Images) == 0 {
		utils.GinFailedWithMessage(c, 400, "至少需要提供1张输入图片")
		return
	}
	if len(req.Images) > maxCompositionImages {
		utils.GinFailedWithMessage(c, 400, "最多支持10张输入图片")
		return
	}

	imageSources := make([]string, 0, len(req.Images))
	for _, image := range req.Images {
		if image.URL == "" {
			utils.GinFailedWithMessage(c, 400, "输入图片缺少 url")
			return
		}
		imageSources = append(imageSources, image.URL)
	}

	taskId, submitId, err := dreamina.DreaminaServiceApp.SubmitCompositionTask(c.Request.Context(), req.Model, req.Prompt, imageSources, dreamina.GenerationOptions{
		Ratio:          req.Ratio,
		Resolution:     req.Resolution,
		SampleStrength: req.SampleStrength,
		NegativePrompt: req.NegativePrompt,
		Seed:           req.Seed,
	}, c.GetString("token"))
	if err != nil {
		utils.GinFailedWithError(c, 500, err)
		return
	}
	logger.Infof("composition task %s created, submit_id: %s, images: %d", taskId, submitId, len(imageSources))
	c.JSON(200, model.TaskCreatedResponse{
		TaskId:      taskId,
		SubmitId:    submitId,
		Status:      "pending",
		Message:     "任务已提交，请通过 GET /v1/images/tasks/{task_id} 查询状态",
		InputImages: len(imageSources),
		Created:     time.Now().Unix(),
	})
}
