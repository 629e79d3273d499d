package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/utils"
)

func GetCredit(c *gin.Context) {
	credit, err := dreamina.DreaminaServiceApp.GetCredit(c.Request.Context(), c.GetString("token"))
	if err != nil {
		utils.GinFailedWithError(c, 500, err)
		return
	}
	c.JSON(200, credit)
}

func ReceiveCredit(c *gin.Context) {
	quota, err := dreamina.DreaminaServiceApp.ReceiveCredit(c.Request.Context(), c.GetString("token"))
	if err != nil {
		utils.GinFailedWithError(c, 500, err)
		return
	}
	c.JSON(200, gin.H{"receive_quota": quota})
}
