package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/logger"
	"github.com/haojie06/dreamina-http/internal/model"
	"github.com/haojie06/dreamina-http/internal/server/handler"
	"github.com/haojie06/dreamina-http/internal/utils"
)

func Start(host, port string) {
	router := InitRouter()
	if err := router.Run(host + ":" + port); err != nil {
		panic(err)
	}
}

// TokenExtractMiddleware resolves the credential for a request: one token
// sampled from the Authorization header, falling back to the configured
// default token.
func TokenExtractMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokens := utils.TokenSplit(c.GetHeader("Authorization"))
		token := utils.SampleToken(tokens)
		if token == "" {
			token = dreamina.DreaminaServiceApp.DefaultToken()
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: model.ErrorDetail{
					Message: "Authorization header 是必需的",
					Type:    "api_error",
					Code:    http.StatusUnauthorized,
				},
			})
			return
		}
		c.Set("token", token)
		c.Next()
	}
}

func InitRouter() *gin.Engine {
	router := gin.New()
	router.Use(ginzap.RecoveryWithZap(logger.ZapLogger, true))
	router.Use(ginzap.Ginzap(logger.ZapLogger, time.RFC3339Nano, true))
	router.Use(cors.Default())
	pprof.Register(router)

	router.GET("/ping", handler.Ping)
	router.GET("/health", handler.Ping)
	router.GET("/v1/models", handler.ListModels)

	apiGroup := router.Group("/v1", TokenExtractMiddleware())
	apiGroup.POST("/images/generations", handler.CreateGenerationTask)
	apiGroup.POST("/images/compositions", handler.CreateCompositionTask)
	apiGroup.GET("/images/tasks/:task_id", handler.GetTaskStatus)
	apiGroup.POST("/images/history", handler.GetHistory)

	apiGroup.GET("/credit", handler.GetCredit)
	apiGroup.POST("/credit/receive", handler.ReceiveCredit)
	return router
}
