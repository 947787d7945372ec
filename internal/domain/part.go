package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Part is a piece of multimodal content: either TextPart or InlineImage.
type Part interface {
	isPart()
}

// TextPart is plain text content.
type TextPart struct {
	Text string
}

// InlineImage is binary image content with its MIME type.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

func (TextPart) isPart()    {}
func (InlineImage) isPart() {}

// DefaultImageMIMEType is used when a data URL carries no MIME type.
const DefaultImageMIMEType = "image/png"

// IsDataURL reports whether s is a data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL decodes a base64 data URL of the form data:<mime>;base64,<payload>.
func ParseDataURL(s string) (InlineImage, error) {
	if !IsDataURL(s) {
		return InlineImage{}, NewValidationError("image must be a data URL")
	}
	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return InlineImage{}, NewValidationError("malformed data URL")
	}

	mimeType := DefaultImageMIMEType
	meta := strings.TrimPrefix(header, "data:")
	if m, _, found := strings.Cut(meta, ";"); found && m != "" {
		mimeType = m
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return InlineImage{}, NewValidationError(fmt.Sprintf("invalid base64 image data: %v", err))
	}
	return InlineImage{MIMEType: mimeType, Data: data}, nil
}

// DataURL encodes the image as a base64 data URL.
func (img InlineImage) DataURL() string {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = DefaultImageMIMEType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
