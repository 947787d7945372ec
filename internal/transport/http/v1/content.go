package v1

import (
	"encoding/json"
	"io"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// decodeContent reads a {"content": string} body.
func decodeContent(r io.Reader) (string, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return "", domain.NewValidationError("Invalid request body")
	}
	raw, ok := body["content"]
	if !ok || string(raw) == "null" {
		return "", domain.NewValidationError("Content must be a string")
	}
	var content string
	if err := json.Unmarshal(raw, &content); err != nil {
		return "", domain.NewValidationError("Content must be a string")
	}
	return content, nil
}

var errInvalidDocument = domain.NewValidationError("Invalid document ID")
