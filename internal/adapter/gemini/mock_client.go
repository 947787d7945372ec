package gemini

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// mockPNG is a 1x1 transparent PNG.
var mockPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

// MockClient is an offline implementation of Client for local runs and tests.
type MockClient struct {
	chunkSize int
}

// NewMockClient creates a new mock client.
func NewMockClient() *MockClient {
	return &MockClient{chunkSize: 16}
}

// StreamChat echoes the message back in chunks, wrapped in a prompt block.
func (m *MockClient) StreamChat(ctx context.Context, req *ChatRequest) (ChatStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply := fmt.Sprintf("[MOCK] Received %q with %d prior turns.\n\n---PROMPT---\n%s\n---END---",
		truncate(req.Message, 100), len(req.History), truncate(req.Message, 400))
	return NewSliceStream(splitIntoChunks(reply, m.chunkSize), nil), nil
}

// GenerateContent returns a fixed image with a short caption.
func (m *MockClient) GenerateContent(ctx context.Context, req *ContentRequest) (*ContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ContentResponse{
		Candidates: []Candidate{{
			Parts: []domain.Part{
				domain.TextPart{Text: fmt.Sprintf("[MOCK] %s image at %s", req.ImageSize, req.AspectRatio)},
				domain.InlineImage{MIMEType: "image/png", Data: mockPNG},
			},
		}},
	}, nil
}

// SliceStream replays fixed chunks, then reports err.
type SliceStream struct {
	chunks []string
	err    error
	pos    int
	closed bool
}

// NewSliceStream creates a stream over chunks that ends with err.
func NewSliceStream(chunks []string, err error) *SliceStream {
	return &SliceStream{chunks: chunks, err: err, pos: -1}
}

func (s *SliceStream) Next() bool {
	if s.closed || s.pos+1 >= len(s.chunks) {
		s.pos = len(s.chunks)
		return false
	}
	s.pos++
	return true
}

func (s *SliceStream) Text() string {
	if s.pos < 0 || s.pos >= len(s.chunks) {
		return ""
	}
	return s.chunks[s.pos]
}

func (s *SliceStream) Err() error {
	if s.pos >= len(s.chunks) {
		return s.err
	}
	return nil
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceStream) Closed() bool { return s.closed }

func splitIntoChunks(s string, chunkSize int) []string {
	runes := []rune(s)
	var chunks []string
	for i := 0; i < len(runes); i += chunkSize {
		end := min(i+chunkSize, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
