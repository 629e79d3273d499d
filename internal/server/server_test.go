package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func tokenRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", TokenExtractMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("token"))
	})
	return router
}

func TestTokenExtractMiddlewareRejectsMissingToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/probe", nil)
	tokenRouter().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestTokenExtractMiddlewarePassesBearerToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/probe", nil)
	request.Header.Set("Authorization", "Bearer us-session-token")
	tokenRouter().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if recorder.Body.String() != "us-session-token" {
		t.Fatalf("token = %q, want us-session-token", recorder.Body.String())
	}
}

func TestTokenExtractMiddlewareSamplesFromPool(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/probe", nil)
	request.Header.Set("Authorization", "Bearer tok1,tok2")
	tokenRouter().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	token := recorder.Body.String()
	if token != "tok1" && token != "tok2" {
		t.Fatalf("token = %q, want one of the pool", token)
	}
}
