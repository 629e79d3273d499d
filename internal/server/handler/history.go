package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/model"
	"github.com/haojie06/dreamina-http/internal/utils"
)

func GetHistory(c *gin.Context) {
	var req model.HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinFailedWithMessage(c, 400, err.Error())
		return
	}
	if len(req.SubmitIds) == 0 {
		utils.GinFailedWithMessage(c, 400, "至少需要提供1个submit_id")
		return
	}
	histories, err := dreamina.DreaminaServiceApp.GetHistoryBySubmitIDs(c.Request.Context(), req.SubmitIds, c.GetString("token"))
	if err != nil {
		utils.GinFailedWithError(c, 500, err)
		return
	}
	c.JSON(200, model.HistoryResponse{
		Created: time.Now().Unix(),
		Data:    histories,
	})
}
