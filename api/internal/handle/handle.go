package handle

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"manga-translator/api/internal/service"
	"manga-translator/api/internal/types"
)

// RequestIDKey is the gin context key set by the request-id middleware.
const RequestIDKey = "request_id"

type Translator interface {
	Translate(ctx context.Context, imageBase64 string) (service.Result, error)
}

type Handle struct {
	svc Translator
}

func New(svc Translator) *Handle {
	return &Handle{svc: svc}
}

func writeMessage(c *gin.Context, code int, msg string) {
	c.JSON(code, types.TranslationResponse{Message: msg})
}

// Respond maps a service outcome to a status code and a response message.
func Respond(res service.Result, err error) (int, string) {
	switch {
	case err == nil && res.NoText:
		return http.StatusOK, types.MsgNoTextFound
	case err == nil:
		return http.StatusOK, res.Text
	case errors.Is(err, types.ErrImageMissing):
		return http.StatusBadRequest, types.MsgImageMissing
	case errors.Is(err, types.ErrInvalidBase64):
		return http.StatusBadRequest, types.MsgInvalidBase64
	default:
		return http.StatusInternalServerError, types.MsgInternalPrefix + err.Error()
	}
}
