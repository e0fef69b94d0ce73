package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"manga-translator/api/internal/translate"
	"manga-translator/api/internal/types"
)

const (
	DefaultURL        = "https://api-free.deepl.com/v2/translate"
	DefaultTargetLang = "PT-BR"
)

type Client struct {
	apiKey     string
	url        string
	targetLang string
	httpc      *http.Client
}

func New(httpc *http.Client, apiKey, url, targetLang string) *Client {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	if strings.TrimSpace(targetLang) == "" {
		targetLang = DefaultTargetLang
	}
	return &Client{
		apiKey:     apiKey,
		url:        url,
		targetLang: strings.ToUpper(targetLang),
		httpc:      httpc,
	}
}

type request struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
}

type response struct {
	Translations []struct {
		Text                   string `json:"text"`
		DetectedSourceLanguage string `json:"detected_source_language"`
	} `json:"translations"`
}

func (c *Client) Translate(ctx context.Context, text string) (translate.Result, error) {
	if strings.TrimSpace(text) == "" {
		logrus.Warn("empty source text, nothing to translate")
		return translate.Result{}, nil
	}

	out, err := c.do(ctx, text)
	if err != nil {
		logrus.WithError(err).Error("deepl translate failed")
		return translate.Result{}, fmt.Errorf("%w: %v", types.ErrTranslationProvider, err)
	}

	if len(out.Translations) == 0 {
		logrus.Warn("deepl response has no translations")
		return translate.Result{Text: types.MsgUnexpectedResponse}, nil
	}

	tr := out.Translations[0]
	logrus.WithField("detected_lang", tr.DetectedSourceLanguage).Infof("translated: %s", tr.Text)
	return translate.Result{Text: tr.Text, DetectedSourceLanguage: tr.DetectedSourceLanguage}, nil
}

func (c *Client) do(ctx context.Context, text string) (*response, error) {
	payload, err := json.Marshal(request{Text: []string{text}, TargetLang: c.targetLang})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)

	logrus.WithField("chars", len([]rune(text))).Info("sending text to deepl")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		x, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("deepl %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode deepl response: %w", err)
	}
	return &out, nil
}
