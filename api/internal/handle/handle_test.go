package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manga-translator/api/internal/ocr"
	"manga-translator/api/internal/service"
	"manga-translator/api/internal/translate"
	"manga-translator/api/internal/types"
)

type fakeEngine struct {
	text string
	err  error
}

func (f fakeEngine) Name() string { return "fake" }
func (f fakeEngine) Extract(context.Context, []byte) (ocr.Result, error) {
	return ocr.Result{Text: f.text}, f.err
}

type fakeTranslator struct {
	res translate.Result
	err error
}

func (f fakeTranslator) Translate(context.Context, string) (translate.Result, error) {
	return f.res, f.err
}

func newRouter(eng ocr.Engine, tr translate.Translator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(service.New(eng, tr))
	r := gin.New()
	r.POST("/api/manga/translate", h.Translate)
	return r
}

func post(t *testing.T, r http.Handler, body string) (int, types.TranslationResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/manga/translate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out types.TranslationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func jsonBody(t *testing.T, img string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(types.TranslationRequest{ImageBase64: img}))
	return buf.String()
}

func TestTranslateMissingImage(t *testing.T) {
	r := newRouter(fakeEngine{text: "x"}, fakeTranslator{})

	for _, body := range []string{`{}`, `{"imageBase64":null}`, `{"imageBase64":""}`, `{"imageBase64":"   "}`, `not json`} {
		code, out := post(t, r, body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, types.MsgImageMissing, out.Message, body)
	}
}

func TestTranslateInvalidBase64(t *testing.T) {
	r := newRouter(fakeEngine{text: "x"}, fakeTranslator{})

	for _, img := range []string{"***", "data:image/png;base64,***", "AA\nAA", "AAAA "} {
		code, out := post(t, r, jsonBody(t, img))
		assert.Equal(t, http.StatusBadRequest, code, img)
		assert.Equal(t, types.MsgInvalidBase64, out.Message, img)
	}
}

func TestTranslateNoTextFound(t *testing.T) {
	r := newRouter(fakeEngine{text: ""}, fakeTranslator{res: translate.Result{Text: "should not be used"}})

	code, out := post(t, r, jsonBody(t, "AAAA"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, types.MsgNoTextFound, out.Message)
}

func TestTranslateSuccess(t *testing.T) {
	r := newRouter(
		fakeEngine{text: "こんにちは"},
		fakeTranslator{res: translate.Result{Text: "Olá", DetectedSourceLanguage: "JA"}},
	)

	code, out := post(t, r, jsonBody(t, "data:image/png;base64,AAAA"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Olá", out.Message)
}

func TestTranslateOCRFailure(t *testing.T) {
	r := newRouter(fakeEngine{err: fmt.Errorf("%w: Bad image data.", types.ErrOCRProvider)}, fakeTranslator{})

	code, out := post(t, r, jsonBody(t, "AAAA"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.True(t, strings.HasPrefix(out.Message, types.MsgInternalPrefix))
	assert.Contains(t, out.Message, "Bad image data.")
}

func TestTranslateTranslationFailure(t *testing.T) {
	r := newRouter(
		fakeEngine{text: "こんにちは"},
		fakeTranslator{err: fmt.Errorf("%w: deepl 403: Forbidden", types.ErrTranslationProvider)},
	)

	code, out := post(t, r, jsonBody(t, "AAAA"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, out.Message, "deepl 403: Forbidden")
}

func TestTranslateUnexpectedProviderResponse(t *testing.T) {
	r := newRouter(fakeEngine{text: "text"}, fakeTranslator{res: translate.Result{Text: types.MsgUnexpectedResponse}})

	code, out := post(t, r, jsonBody(t, "AAAA"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, types.MsgUnexpectedResponse, out.Message)
}

func TestRespond(t *testing.T) {
	code, msg := Respond(service.Result{NoText: true}, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, types.MsgNoTextFound, msg)

	code, msg = Respond(service.Result{}, context.DeadlineExceeded)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error: context deadline exceeded", msg)
}
