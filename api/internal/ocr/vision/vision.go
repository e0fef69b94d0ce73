package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
	visionapi "google.golang.org/api/vision/v1"

	"manga-translator/api/internal/ocr"
	"manga-translator/api/internal/types"
)

// DOCUMENT_TEXT_DETECTION handles dense text (speech balloons) better than TEXT_DETECTION.
const featureDocumentText = "DOCUMENT_TEXT_DETECTION"

type Engine struct {
	opts     []option.ClientOption
	endpoint string
}

// New builds a Google Cloud Vision engine. An empty credentialsFile falls back to
// Application Default Credentials; an empty endpoint uses the public API.
func New(credentialsFile, endpoint string, extra ...option.ClientOption) *Engine {
	opts := []option.ClientOption{option.WithScopes(visionapi.CloudVisionScope)}
	if f := strings.TrimSpace(credentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	if ep := strings.TrimSpace(endpoint); ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}
	opts = append(opts, extra...)
	return &Engine{opts: opts, endpoint: strings.TrimSpace(endpoint)}
}

func (e *Engine) Name() string { return "vision" }

func (e *Engine) Extract(ctx context.Context, img []byte) (ocr.Result, error) {
	// connection scoped to this call
	hc, _, err := htransport.NewClient(ctx, e.opts...)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("%w: vision client: %v", types.ErrOCRProvider, err)
	}
	defer hc.CloseIdleConnections()

	svcOpts := []option.ClientOption{option.WithHTTPClient(hc)}
	if e.endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(e.endpoint))
	}
	svc, err := visionapi.NewService(ctx, svcOpts...)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("%w: vision service: %v", types.ErrOCRProvider, err)
	}

	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image:    &visionapi.Image{Content: base64.StdEncoding.EncodeToString(img)},
			Features: []*visionapi.Feature{{Type: featureDocumentText}},
		}},
	}

	resp, err := svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		logrus.WithError(err).Error("vision annotate failed")
		return ocr.Result{}, fmt.Errorf("%w: %v", types.ErrOCRProvider, err)
	}
	if len(resp.Responses) == 0 {
		return ocr.Result{}, fmt.Errorf("%w: vision returned no responses", types.ErrOCRProvider)
	}

	r := resp.Responses[0]
	if r.Error != nil {
		logrus.WithField("code", r.Error.Code).Errorf("vision error: %s", r.Error.Message)
		return ocr.Result{}, fmt.Errorf("%w: %s", types.ErrOCRProvider, r.Error.Message)
	}
	if r.FullTextAnnotation == nil {
		return ocr.Result{}, nil
	}

	text := strings.TrimSpace(r.FullTextAnnotation.Text)
	logrus.WithField("engine", e.Name()).Infof("text extracted: %s", text)
	return ocr.Result{Text: text}, nil
}
