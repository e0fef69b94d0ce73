package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"manga-translator/api/internal/ocr"
	"manga-translator/api/internal/types"
	"manga-translator/api/internal/util"
)

// noTextMarker is what the model is told to answer when the image has no text.
const noTextMarker = "NO_TEXT"

const systemPrompt = `You are an OCR module. Transcribe ALL text visible in the image exactly as written,
in its original language and script (Japanese, Korean, Chinese, ...). Keep line breaks between balloons.
Do not translate, explain or add anything. If the image contains no text, answer exactly ` + noTextMarker + `.`

type Engine struct {
	APIKey string
	Model  string
	opts   []option.ClientOption
}

func New(apiKey, model string, extra ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   extra,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Extract(ctx context.Context, img []byte) (ocr.Result, error) {
	if e.APIKey == "" {
		return ocr.Result{}, fmt.Errorf("%w: GEMINI_API_KEY is empty", types.ErrOCRProvider)
	}

	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("%w: gemini client: %v", types.ErrOCRProvider, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := m.GenerateContent(ctx,
		genai.Text("Transcribe the text in this image."),
		&genai.Blob{MIMEType: util.SniffMime(img), Data: img},
	)
	if err != nil {
		logrus.WithError(err).Error("gemini generate failed")
		return ocr.Result{}, fmt.Errorf("%w: %v", types.ErrOCRProvider, err)
	}

	text := normalize(firstText(resp))
	logrus.WithFields(logrus.Fields{"engine": e.Name(), "model": e.Model}).Infof("text extracted: %s", text)
	return ocr.Result{Text: text}, nil
}

func normalize(txt string) string {
	txt = util.StripCodeFences(txt)
	if strings.EqualFold(txt, noTextMarker) {
		return ""
	}
	return txt
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
