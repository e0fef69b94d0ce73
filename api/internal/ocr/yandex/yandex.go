package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"manga-translator/api/internal/ocr"
	"manga-translator/api/internal/types"
	"manga-translator/api/internal/util"
)

const defaultOCRURL = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"

type Options struct {
	OAuthToken string
	FolderID   string
	Languages  []string
	// Endpoint and IAMEndpoint override the public URLs.
	Endpoint    string
	IAMEndpoint string
}

type Engine struct {
	iamc     *IamClient
	folderID string
	langs    []string
	url      string
	httpc    *http.Client
}

func New(httpc *http.Client, opts Options) *Engine {
	url := strings.TrimSpace(opts.Endpoint)
	if url == "" {
		url = defaultOCRURL
	}
	return &Engine{
		iamc:     NewIamClient(httpc, strings.TrimSpace(opts.IAMEndpoint), opts.OAuthToken),
		folderID: opts.FolderID,
		langs:    opts.Languages,
		url:      url,
		httpc:    httpc,
	}
}

func (e *Engine) Name() string { return "yandex" }

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`      // "JPEG" | "PNG" | "PDF"
	LanguageCodes []string `json:"languageCodes,omitempty"` // ["ja","ko","zh"]
	Model         string   `json:"model,omitempty"`
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
	} `json:"result,omitempty"`
}

func (e *Engine) Extract(ctx context.Context, img []byte) (ocr.Result, error) {
	text, err := e.recognize(ctx, img)
	if err != nil {
		logrus.WithError(err).Error("yandex ocr failed")
		return ocr.Result{}, fmt.Errorf("%w: %v", types.ErrOCRProvider, err)
	}
	logrus.WithField("engine", e.Name()).Infof("text extracted: %s", text)
	return ocr.Result{Text: text}, nil
}

func (e *Engine) recognize(ctx context.Context, img []byte) (string, error) {
	payload, _ := json.Marshal(request{
		Content:       base64.StdEncoding.EncodeToString(img),
		MimeType:      util.SniffMimeForOCR(img),
		LanguageCodes: e.langs,
		Model:         "page",
	})

	resp, err := e.do(ctx, payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// IAM token revoked early; fetch a fresh one once
		resp.Body.Close()
		e.iamc.Invalidate()
		if resp, err = e.do(ctx, payload); err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("yandex ocr %d: %s", resp.StatusCode, string(x))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.text(), nil
}

func (e *Engine) do(ctx context.Context, payload []byte) (*http.Response, error) {
	iamToken, err := e.iamc.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+iamToken)
	req.Header.Set("x-folder-id", e.folderID)
	return e.httpc.Do(req)
}

func (r *response) text() string {
	if r == nil || r.Result == nil || r.Result.TextAnnotation == nil {
		return ""
	}
	ta := r.Result.TextAnnotation
	if t := strings.TrimSpace(ta.FullText); t != "" {
		return t
	}
	// fallback: lines
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}
