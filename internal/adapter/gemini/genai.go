package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// GenAIClient talks to Gemini through the google.golang.org/genai SDK.
// The API key travels with each request, so a SDK client is built per call.
type GenAIClient struct {
	baseURL string
	tracer  trace.Tracer
}

// NewGenAIClient creates a client. baseURL overrides the API endpoint when set.
func NewGenAIClient(baseURL string) *GenAIClient {
	return &GenAIClient{
		baseURL: baseURL,
		tracer:  otel.Tracer("github.com/xiaot623/gogo/vizstudio/gemini"),
	}
}

func (c *GenAIClient) newClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// StreamChat starts a chat with the given history and streams the reply.
func (c *GenAIClient) StreamChat(ctx context.Context, req *ChatRequest) (ChatStream, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.chat",
		trace.WithAttributes(
			attribute.String("gemini.model", req.Model),
			attribute.Int("gemini.history_turns", len(req.History)),
		))

	client, err := c.newClient(ctx, req.APIKey)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	history := make([]*genai.Content, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
	}

	chat, err := client.Chats.Create(ctx, req.Model, config, history)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	next, stop := iter.Pull2(chat.SendMessageStream(ctx, genai.Part{Text: req.Message}))
	s := &genaiStream{next: next, stop: stop, span: span}

	// Pull the first chunk so request-level rejections surface before the
	// caller commits to a streaming response.
	ok := s.advance()
	if !ok && s.err != nil {
		err := s.err
		s.Close()
		return nil, err
	}
	s.primed = ok
	return s, nil
}

type genaiStream struct {
	next   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	span   trace.Span
	cur    string
	err    error
	done   bool
	primed bool
	closed bool
}

func (s *genaiStream) advance() bool {
	for {
		resp, err, ok := s.next()
		if !ok {
			s.done = true
			return false
		}
		if err != nil {
			s.err = err
			s.done = true
			return false
		}
		if text := responseText(resp); text != "" {
			s.cur = text
			return true
		}
	}
}

func (s *genaiStream) Next() bool {
	if s.primed {
		s.primed = false
		return true
	}
	if s.done {
		return false
	}
	return s.advance()
}

func (s *genaiStream) Text() string { return s.cur }

func (s *genaiStream) Err() error { return s.err }

func (s *genaiStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stop()
	endSpan(s.span, s.err)
	return nil
}

// responseText concatenates the non-thought text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// GenerateContent sends a multimodal request that may return images.
func (c *GenAIClient) GenerateContent(ctx context.Context, req *ContentRequest) (*ContentResponse, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.generate_content",
		trace.WithAttributes(
			attribute.String("gemini.model", req.Model),
			attribute.String("gemini.aspect_ratio", req.AspectRatio),
			attribute.String("gemini.image_size", req.ImageSize),
		))

	resp, err := c.generateContent(ctx, req)
	endSpan(span, err)
	return resp, err
}

func (c *GenAIClient) generateContent(ctx context.Context, req *ContentRequest) (*ContentResponse, error) {
	client, err := c.newClient(ctx, req.APIKey)
	if err != nil {
		return nil, err
	}

	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch p := p.(type) {
		case domain.TextPart:
			parts = append(parts, genai.NewPartFromText(p.Text))
		case domain.InlineImage:
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
		default:
			return nil, fmt.Errorf("unsupported part type %T", p)
		}
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: req.AspectRatio,
			ImageSize:   req.ImageSize,
		},
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, err
	}
	return mapResponse(resp), nil
}

// mapResponse converts SDK candidates into validated domain parts. Parts
// that are neither text nor inline images are dropped.
func mapResponse(resp *genai.GenerateContentResponse) *ContentResponse {
	out := &ContentResponse{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		var c Candidate
		if cand.Content != nil {
			for _, p := range cand.Content.Parts {
				if p == nil || p.Thought {
					continue
				}
				switch {
				case p.InlineData != nil && len(p.InlineData.Data) > 0:
					c.Parts = append(c.Parts, domain.InlineImage{
						MIMEType: p.InlineData.MIMEType,
						Data:     p.InlineData.Data,
					})
				case p.Text != "":
					c.Parts = append(c.Parts, domain.TextPart{Text: p.Text})
				}
			}
		}
		out.Candidates = append(out.Candidates, c)
	}
	return out
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
