package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"manga-translator/api/internal/types"
)

// DecodedImage is the raw payload of a TranslationRequest.
type DecodedImage struct {
	Data []byte
	Size int
}

// SizeKB is used for logging only.
func (d DecodedImage) SizeKB() string {
	return fmt.Sprintf("%.2f", float64(d.Size)/1024.0)
}

// StripDataURL drops everything up to and including the first comma,
// so "data:image/png;base64,AAAA" becomes "AAAA".
func StripDataURL(s string) string {
	if _, payload, ok := strings.Cut(s, ","); ok {
		return payload
	}
	return s
}

var (
	errIllegalChar = errors.New("illegal base64 character")
	errBadPadding  = errors.New("wrong padding")
)

// decodeBase64 accepts the standard alphabet only. Padding is optional but
// must be well formed when present; whitespace and line breaks are rejected.
func decodeBase64(s string) ([]byte, error) {
	body := strings.TrimRight(s, "=")
	for i := 0; i < len(body); i++ {
		if !isBase64Char(body[i]) {
			return nil, fmt.Errorf("%w at input byte %d", errIllegalChar, i)
		}
	}
	if pad := len(s) - len(body); pad > 0 {
		if pad > 2 || len(s)%4 != 0 {
			return nil, errBadPadding
		}
	}
	return base64.RawStdEncoding.DecodeString(body)
}

func isBase64Char(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	return c == '+' || c == '/'
}

// DecodeImage validates and decodes a base64 image payload.
func DecodeImage(b64 string) (DecodedImage, error) {
	if strings.TrimSpace(b64) == "" {
		return DecodedImage{}, types.ErrImageMissing
	}

	data, err := decodeBase64(StripDataURL(b64))
	if err != nil {
		logrus.WithError(err).Warn("invalid base64 received")
		return DecodedImage{}, fmt.Errorf("%w: %v", types.ErrInvalidBase64, err)
	}
	if len(data) == 0 {
		logrus.Warn("base64 payload decoded to zero bytes")
		return DecodedImage{}, types.ErrInvalidBase64
	}

	img := DecodedImage{Data: data, Size: len(data)}
	logrus.WithField("size_kb", img.SizeKB()).Info("image received")
	return img, nil
}
