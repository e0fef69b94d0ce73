package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"manga-translator/api/internal/types"
)

// Translate serves POST /api/manga/translate.
func (h *Handle) Translate(c *gin.Context) {
	log := logrus.WithField("request_id", c.GetString(RequestIDKey))

	var req types.TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Warn("request without a readable body")
		writeMessage(c, http.StatusBadRequest, types.MsgImageMissing)
		return
	}

	res, err := h.svc.Translate(c.Request.Context(), req.ImageBase64)
	code, msg := Respond(res, err)

	switch {
	case code >= http.StatusInternalServerError:
		log.WithError(err).Error("translation pipeline failed")
	case code >= http.StatusBadRequest:
		log.WithError(err).Warn("rejected translation request")
	default:
		log.WithField("no_text", res.NoText).Info("translation sent")
	}

	writeMessage(c, code, msg)
}
