package util

import (
	"net/http"
	"strings"
)

// SniffMimeForOCR returns the format token Yandex OCR expects: "JPEG" | "PNG" | "PDF".
func SniffMimeForOCR(b []byte) string {
	switch SniffMime(b) {
	case "image/jpeg":
		return "JPEG"
	case "image/png":
		return "PNG"
	case "application/pdf":
		return "PDF"
	}
	return ""
}

// SniffMime detects the MIME type of an image by magic bytes.
func SniffMime(b []byte) string {
	// JPEG: FF D8
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	// PDF: %PDF-
	if len(b) >= 5 && string(b[:5]) == "%PDF-" {
		return "application/pdf"
	}
	if len(b) > 0 {
		ct := http.DetectContentType(b)
		if i := strings.IndexByte(ct, ';'); i != -1 {
			ct = ct[:i]
		}
		return ct
	}
	return "application/octet-stream"
}
