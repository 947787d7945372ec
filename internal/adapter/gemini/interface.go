// Package gemini provides an abstraction over the Gemini chat and image APIs.
package gemini

import (
	"context"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// Provider role names.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one history entry in the provider's role vocabulary.
type Turn struct {
	Role string
	Text string
}

// ChatRequest starts a chat turn against a conversational model.
type ChatRequest struct {
	APIKey            string
	Model             string
	SystemInstruction string
	History           []Turn
	Message           string
}

// ChatStream yields generated text in order.
type ChatStream interface {
	// Next advances to the next chunk of text.
	Next() bool
	// Text returns the current chunk.
	Text() string
	// Err returns the error that stopped the stream, if any.
	Err() error
	// Close releases provider resources.
	Close() error
}

// ContentRequest asks an image model for a multimodal completion.
type ContentRequest struct {
	APIKey      string
	Model       string
	Parts       []domain.Part
	AspectRatio string
	ImageSize   string
}

// Candidate is one generated alternative.
type Candidate struct {
	Parts []domain.Part
}

// ContentResponse is the validated result of a content request.
type ContentResponse struct {
	Candidates []Candidate
}

// Client defines the provider operations used by the studio.
type Client interface {
	// StreamChat submits a chat turn. Failures that happen before the first
	// chunk is produced are returned here rather than through the stream.
	StreamChat(ctx context.Context, req *ChatRequest) (ChatStream, error)

	// GenerateContent sends a non-streaming multimodal request.
	GenerateContent(ctx context.Context, req *ContentRequest) (*ContentResponse, error)
}

// Ensure implementations satisfy Client.
var (
	_ Client = (*GenAIClient)(nil)
	_ Client = (*MockClient)(nil)
)
