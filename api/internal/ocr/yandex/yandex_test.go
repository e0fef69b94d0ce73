package yandex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manga-translator/api/internal/types"
)

type fakeYandex struct {
	iamCalls atomic.Int32
	ocrCalls atomic.Int32
	// rejectFirst makes the first OCR call answer 401.
	rejectFirst bool
	ocrBody     string
	ocrStatus   int
}

func (f *fakeYandex) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/iam":
			n := f.iamCalls.Add(1)
			var in map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "oauth", in["yandexPassportOauthToken"])
			_, _ = w.Write([]byte(`{"iamToken":"iam-` + string(rune('0'+n)) + `"}`))
		case "/ocr":
			n := f.ocrCalls.Add(1)
			assert.Equal(t, "folder", r.Header.Get("x-folder-id"))
			if f.rejectFirst && n == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var in request
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "page", in.Model)
			assert.Equal(t, []string{"ja"}, in.LanguageCodes)
			if f.ocrStatus != 0 {
				w.WriteHeader(f.ocrStatus)
			}
			_, _ = w.Write([]byte(f.ocrBody))
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestEngine(t *testing.T, f *fakeYandex) *Engine {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return New(srv.Client(), Options{
		OAuthToken:  "oauth",
		FolderID:    "folder",
		Languages:   []string{"ja"},
		Endpoint:    srv.URL + "/ocr",
		IAMEndpoint: srv.URL + "/iam",
	})
}

func TestExtractFullText(t *testing.T) {
	f := &fakeYandex{ocrBody: `{"result":{"textAnnotation":{"fullText":" こんにちは "}}}`}
	eng := newTestEngine(t, f)

	res, err := eng.Extract(context.Background(), []byte{0xFF, 0xD8})
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", res.Text)

	// token is cached between calls
	_, err = eng.Extract(context.Background(), []byte{0xFF, 0xD8})
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.iamCalls.Load())
}

func TestExtractFallsBackToLines(t *testing.T) {
	f := &fakeYandex{ocrBody: `{"result":{"textAnnotation":{"blocks":[{"lines":[{"text":"一"},{"text":" "}]},{"lines":[{"text":"二"}]}]}}}`}

	res, err := newTestEngine(t, f).Extract(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "一\n二", res.Text)
}

func TestExtractEmpty(t *testing.T) {
	f := &fakeYandex{ocrBody: `{"result":{}}`}

	res, err := newTestEngine(t, f).Extract(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestExtractRefreshesTokenOn401(t *testing.T) {
	f := &fakeYandex{rejectFirst: true, ocrBody: `{"result":{"textAnnotation":{"fullText":"ok"}}}`}

	res, err := newTestEngine(t, f).Extract(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, int32(2), f.iamCalls.Load())
	assert.Equal(t, int32(2), f.ocrCalls.Load())
}

func TestExtractProviderError(t *testing.T) {
	f := &fakeYandex{ocrStatus: http.StatusBadRequest, ocrBody: `{"message":"unsupported image"}`}

	_, err := newTestEngine(t, f).Extract(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrOCRProvider))
	assert.Contains(t, err.Error(), "unsupported image")
}
