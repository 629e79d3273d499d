package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/utils"
)

// GetTaskStatus always answers 200 with a well formed snapshot, failures
// are folded into the task state.
func GetTaskStatus(c *gin.Context) {
	taskId := c.Param("task_id")
	if taskId == "" {
		utils.GinFailedWithMessage(c, 400, "task_id 参数是必填的")
		return
	}
	status := dreamina.DreaminaServiceApp.GetTaskStatus(c.Request.Context(), taskId, c.GetString("token"))
	c.JSON(200, status)
}
