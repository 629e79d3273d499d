package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/haojie06/dreamina-http/internal/dreamina"
	"github.com/haojie06/dreamina-http/internal/model"
)

func GinFailedWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, model.ErrorResponse{
		Error: model.ErrorDetail{
			Message: message,
			Type:    "api_error",
			Code:    status,
		},
	})
}

// GinFailedWithError mirrors the upstream error code into the response
// when the failure is a classified api error.
func GinFailedWithError(c *gin.Context, status int, err error) {
	code := status
	var apiErr *dreamina.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.Code
	}
	c.JSON(status, model.ErrorResponse{
		Error: model.ErrorDetail{
			Message: err.Error(),
			Type:    "api_error",
			Code:    code,
		},
	})
}
