package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/logger"
	"github.com/haojie06/dreamina-http/internal/model"
	"github.com/haojie06/dreamina-http/internal/utils"
)

func CreateGenerationTask(c *gin.Context) {
	var req model.GenerationTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinFailedWithMessage(c, 400, err.Error())
		return
	}
	if req.Prompt == "" {
		utils.GinFailedWithMessage(c, 400, "prompt 参数是必填的")
		return
	}

	taskId, submitId, err := dreamina.DreaminaServiceApp.SubmitImageTask(c.Request.Context(), req.Model, req.Prompt, dreamina.GenerationOptions{
		Ratio:            req.Ratio,
		Resolution:       req.Resolution,
		SampleStrength:   req.SampleStrength,
		NegativePrompt:   req.NegativePrompt,
		Seed:             req.Seed,
		IntelligentRatio: req.IntelligentRatio,
	}, c.GetString("token"))
	if err != nil {
		utils.GinFailedWithError(c, 500, err)
		return
	}
	logger.Infof("generation task %s created, submit_id: %s", taskId, submitId)
	c.JSON(200, model.TaskCreatedResponse{
		TaskId:   taskId,
		SubmitId: submitId,
		Status:   "pending",
		Message:  "任务已提交，请通过 GET /v1/images/tasks/{task_id} 查询状态",
		Created:  time.Now().Unix(),
	})
}
