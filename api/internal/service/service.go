package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"manga-translator/api/internal/ocr"
	"manga-translator/api/internal/translate"
	"manga-translator/api/internal/util"
)

// Result of the decode → OCR → translate chain.
// NoText is set when OCR found nothing; Text is empty then.
type Result struct {
	Text   string
	NoText bool
}

type TranslationService struct {
	ocr        ocr.Engine
	translator translate.Translator
}

func New(engine ocr.Engine, translator translate.Translator) *TranslationService {
	return &TranslationService{ocr: engine, translator: translator}
}

// Translate validates and decodes a base64 image, then runs it through TranslateImage.
// Errors wrap the sentinels in package types.
func (s *TranslationService) Translate(ctx context.Context, imageBase64 string) (Result, error) {
	img, err := util.DecodeImage(imageBase64)
	if err != nil {
		return Result{}, err
	}
	return s.TranslateImage(ctx, img.Data)
}

func (s *TranslationService) TranslateImage(ctx context.Context, img []byte) (Result, error) {
	log := logrus.WithField("engine", s.ocr.Name())

	log.Info("starting ocr")
	extracted, err := s.ocr.Extract(ctx, img)
	if err != nil {
		return Result{}, fmt.Errorf("extract text: %w", err)
	}
	if extracted.Empty() {
		log.Warn("ocr found no text in image")
		return Result{NoText: true}, nil
	}

	log.Info("starting translation")
	tr, err := s.translator.Translate(ctx, extracted.Text)
	if err != nil {
		return Result{}, fmt.Errorf("translate text: %w", err)
	}

	log.WithField("detected_lang", tr.DetectedSourceLanguage).Info("translation done")
	return Result{Text: tr.Text}, nil
}
