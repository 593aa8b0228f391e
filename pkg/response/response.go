package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"socialite/pkg/apperr"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// OK writes a success envelope with the given status and payload.
func OK[T any](ctx *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
	})
}

// Fail writes an error envelope, mapping the error's kind to an HTTP status
// and surfacing field details when present.
func Fail(ctx *gin.Context, err error) {
	ctx.JSON(build(ctx, err))
}

// Abort writes an error envelope and stops the handler chain; used by
// middleware.
func Abort(ctx *gin.Context, err error) {
	status, resp := build(ctx, err)
	ctx.AbortWithStatusJSON(status, resp)
}

// FailStatus writes an error envelope with an explicit status and aborts;
// for transport concerns outside the domain taxonomy (e.g. rate limiting).
func FailStatus(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
	})
}

func build(ctx *gin.Context, err error) (int, APIResponse[any]) {
	status := apperr.KindOf(err).HTTPStatus()
	resp := APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   apperr.MessageOf(err),
	}
	if details := apperr.DetailsOf(err); len(details) > 0 {
		resp.Error = details
	}
	return status, resp
}
