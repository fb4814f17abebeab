package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// NotFound renders the fixed not-found body.
func NotFound(ctx *gin.Context) {
	Error(ctx, http.StatusNotFound, 40400, "page not found")
}

// Redirect bounces the client to another resource. Authorization failures use
// this instead of an error status so nothing is leaked about why.
func Redirect(ctx *gin.Context, location string) {
	ctx.Redirect(http.StatusFound, location)
	ctx.Abort()
}
