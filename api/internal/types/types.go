package types

// TranslationRequest is the body of POST /api/manga/translate.
// ImageBase64 may carry a "data:<mime>;base64," prefix.
type TranslationRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// TranslationResponse carries either the translated text or a status message.
type TranslationResponse struct {
	Message string `json:"message"`
}

const (
	MsgImageMissing       = "image not provided"
	MsgInvalidBase64      = "invalid base64"
	MsgNoTextFound        = "no text found"
	MsgUnexpectedResponse = "unexpected response"
	MsgInternalPrefix     = "internal error: "
)
