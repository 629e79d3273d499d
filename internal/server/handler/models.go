package handler

import (
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/model"
)

func Ping(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok", "timestamp": time.Now().UnixMilli()})
}

func ListModels(c *gin.Context) {
	names := make([]string, 0, len(dreamina.ImageModelMap))
	for name := range dreamina.ImageModelMap {
		names = append(names, name)
	}
	sort.Strings(names)

	models := make([]model.ModelInfo, 0, len(names))
	for _, name := range names {
		models = append(models, model.ModelInfo{
			Id:      name,
			Object:  "model",
			Created: 1700000000,
			OwnedBy: "dreamina",
		})
	}
	c.JSON(200, model.ModelListResponse{
		Object: "list",
		Data:   models,
	})
}
