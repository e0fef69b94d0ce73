package types

import (
	"errors"
	"fmt"
)

var (
	// Client-caused, mapped to 400.
	ErrInvalidInput  = errors.New("invalid input")
	ErrImageMissing  = fmt.Errorf("%w: %s", ErrInvalidInput, MsgImageMissing)
	ErrInvalidBase64 = fmt.Errorf("%w: %s", ErrInvalidInput, MsgInvalidBase64)

	// Upstream failures, mapped to 500.
	ErrOCRProvider         = errors.New("ocr provider error")
	ErrTranslationProvider = errors.New("translation provider error")
)
