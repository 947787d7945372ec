package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// User-facing messages for normalized provider failures.
const (
	MsgOverloaded    = "Gemini API is overloaded. Please try again."
	MsgInvalidAPIKey = "Invalid API key."
)

// NormalizeProviderError maps a raw provider failure onto a ProviderError.
// Validation errors, already normalized errors and cancellations pass through.
func NormalizeProviderError(err error) error {
	if err == nil {
		return nil
	}
	var ve *domain.ValidationError
	var pe *domain.ProviderError
	if errors.As(err, &ve) || errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusServiceUnavailable:
			return &domain.ProviderError{Category: domain.ProviderOverloaded, Message: MsgOverloaded, Err: err}
		case http.StatusUnauthorized:
			return &domain.ProviderError{Category: domain.ProviderInvalidCredential, Message: MsgInvalidAPIKey, Err: err}
		}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "503") || strings.Contains(lower, "overload"):
		return &domain.ProviderError{Category: domain.ProviderOverloaded, Message: MsgOverloaded, Err: err}
	case strings.Contains(msg, "401") || strings.Contains(lower, "invalid"):
		return &domain.ProviderError{Category: domain.ProviderInvalidCredential, Message: MsgInvalidAPIKey, Err: err}
	default:
		return &domain.ProviderError{Category: domain.ProviderGeneric, Message: msg, Err: err}
	}
}

// StatusCode derives the HTTP status for an error returned by the service.
func StatusCode(err error) int {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound
	}
	var de *domain.DocumentError
	if errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		switch pe.Category {
		case domain.ProviderOverloaded:
			return http.StatusServiceUnavailable
		case domain.ProviderInvalidCredential:
			return http.StatusUnauthorized
		}
	}
	return http.StatusInternalServerError
}
