package gemini

import "go.uber.org/zap"

// ModeMock selects the offline mock client.
const ModeMock = "MOCK"

// NewClient creates a provider client for the given mode.
// If mode is MOCK, returns a MockClient; otherwise returns a GenAIClient.
func NewClient(mode, baseURL string, logger *zap.Logger) Client {
	if mode == ModeMock {
		logger.Info("mock mode detected, using mock Gemini client")
		return NewMockClient()
	}
	return NewGenAIClient(baseURL)
}
