package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manga-translator/api/internal/ocr"
	"manga-translator/api/internal/translate"
	"manga-translator/api/internal/types"
)

type fakeEngine struct {
	text string
	err  error
	got  []byte
}

func (f *fakeEngine) Name() string { return "fake" }
func (f *fakeEngine) Extract(_ context.Context, img []byte) (ocr.Result, error) {
	f.got = img
	return ocr.Result{Text: f.text}, f.err
}

type fakeTranslator struct {
	res    translate.Result
	err    error
	called bool
	got    string
}

func (f *fakeTranslator) Translate(_ context.Context, text string) (translate.Result, error) {
	f.called = true
	f.got = text
	return f.res, f.err
}

func TestTranslateSuccess(t *testing.T) {
	eng := &fakeEngine{text: "こんにちは"}
	tr := &fakeTranslator{res: translate.Result{Text: "Olá", DetectedSourceLanguage: "JA"}}

	res, err := New(eng, tr).Translate(context.Background(), "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, Result{Text: "Olá"}, res)
	assert.Equal(t, []byte{0, 0, 0}, eng.got)
	assert.Equal(t, "こんにちは", tr.got)
}

func TestTranslateInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "blank", in: "  ", want: types.ErrImageMissing},
		{name: "bad base64", in: "!!!", want: types.ErrInvalidBase64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{}
			_, err := New(eng, &fakeTranslator{}).Translate(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Nil(t, eng.got)
		})
	}
}

func TestTranslateNoText(t *testing.T) {
	tr := &fakeTranslator{}

	res, err := New(&fakeEngine{text: " \n"}, tr).Translate(context.Background(), "AAAA")
	require.NoError(t, err)
	assert.True(t, res.NoText)
	assert.False(t, tr.called)
}

func TestTranslateOCRError(t *testing.T) {
	eng := &fakeEngine{err: fmt.Errorf("%w: quota exceeded", types.ErrOCRProvider)}
	tr := &fakeTranslator{}

	_, err := New(eng, tr).Translate(context.Background(), "AAAA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrOCRProvider))
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.False(t, tr.called)
}

func TestTranslateTranslationError(t *testing.T) {
	tr := &fakeTranslator{err: fmt.Errorf("%w: deepl 403", types.ErrTranslationProvider)}

	_, err := New(&fakeEngine{text: "text"}, tr).TranslateImage(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTranslationProvider))
}
