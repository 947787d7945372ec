package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/adapter/gemini"
	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/prompt"
)

// ChatInput is a chat turn submitted to the relay. Empty context fields are
// resolved for the session.
type ChatInput struct {
	SessionID        string           `json:"-"`
	Messages         []domain.Message `json:"messages"`
	APIKey           string           `json:"apiKey"`
	FacilitySpecs    string           `json:"facilitySpecs,omitempty"`
	DesignGuidelines string           `json:"designGuidelines,omitempty"`
	CompanyContext   string           `json:"companyContext,omitempty"`
}

// Start validates the input, opens the provider stream and relays it.
//
// Validation failures and failures before the first chunk are returned
// synchronously. Otherwise the returned channel yields Text events in
// generation order followed by exactly one Done or Error event, then closes.
// Cancelling ctx stops the relay.
func (s *Service) Start(ctx context.Context, in ChatInput) (<-chan domain.StreamEvent, error) {
	if in.APIKey == "" {
		return nil, domain.NewValidationError("API key required")
	}
	if len(in.Messages) == 0 {
		return nil, domain.NewValidationError("Messages required")
	}

	req := &gemini.ChatRequest{
		APIKey:            in.APIKey,
		Model:             s.config.ChatModel,
		SystemInstruction: s.systemPrompt(ctx, in),
		History:           NormalizeHistory(in.Messages),
		Message:           in.Messages[len(in.Messages)-1].Content,
	}

	call := s.beginCall(in.SessionID, domain.CallKindChat, req.Model)
	stream, err := s.gemini.StreamChat(ctx, req)
	if err != nil {
		err = NormalizeProviderError(err)
		s.finishCall(ctx, call, err)
		return nil, err
	}

	events := make(chan domain.StreamEvent)
	go s.relay(ctx, stream, call, events)
	return events, nil
}

func (s *Service) relay(ctx context.Context, stream gemini.ChatStream, call *callRecord, events chan<- domain.StreamEvent) {
	defer close(events)
	defer stream.Close()

	// The audit record outlives the request context.
	recordCtx := context.WithoutCancel(ctx)

	send := func(ev domain.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for stream.Next() {
		text := stream.Text()
		if text == "" {
			continue
		}
		if !send(domain.TextEvent(text)) {
			s.finishCall(recordCtx, call, ctx.Err())
			return
		}
	}

	if err := stream.Err(); err != nil {
		err = NormalizeProviderError(err)
		s.finishCall(recordCtx, call, err)
		send(domain.ErrorEvent(err.Error()))
		return
	}

	s.finishCall(recordCtx, call, nil)
	send(domain.DoneEvent())
}

// NormalizeHistory converts all but the last message into provider turns,
// starting at the first user message.
func NormalizeHistory(messages []domain.Message) []gemini.Turn {
	if len(messages) == 0 {
		return nil
	}
	prior := messages[:len(messages)-1]

	first := -1
	for i, m := range prior {
		if m.Role == domain.RoleUser {
			first = i
			break
		}
	}
	if first < 0 {
		return []gemini.Turn{}
	}

	turns := make([]gemini.Turn, 0, len(prior)-first)
	for _, m := range prior[first:] {
		role := gemini.RoleUser
		if m.Role == domain.RoleAssistant {
			role = gemini.RoleModel
		}
		turns = append(turns, gemini.Turn{Role: role, Text: m.Content})
	}
	return turns
}

func (s *Service) systemPrompt(ctx context.Context, in ChatInput) string {
	resolve := func(given string, key domain.ContextKey) string {
		if given != "" {
			return given
		}
		return s.resolver.Resolve(ctx, in.SessionID, key).Content
	}
	return prompt.BuildSystemPrompt(
		resolve(in.FacilitySpecs, domain.ContextFacilitySpecs),
		resolve(in.DesignGuidelines, domain.ContextDesignGuidelines),
		resolve(in.CompanyContext, domain.ContextCompanyContext),
	)
}

type callRecord struct {
	record domain.CallRecord
	start  time.Time
}

func (s *Service) beginCall(sessionID string, kind domain.CallKind, model string) *callRecord {
	return &callRecord{
		record: domain.CallRecord{
			RequestID: "llm_" + uuid.New().String()[:8],
			SessionID: sessionID,
			Kind:      kind,
			Model:     model,
		},
		start: s.now(),
	}
}

func (s *Service) finishCall(ctx context.Context, call *callRecord, err error) {
	call.record.LatencyMs = s.now().Sub(call.start).Milliseconds()
	call.record.CreatedAt = call.start
	if err != nil {
		call.record.Error = err.Error()
	}

	if recordErr := s.store.CreateCallRecord(ctx, &call.record); recordErr != nil {
		s.logger.Warn("failed to record provider call",
			zap.String("request_id", call.record.RequestID), zap.Error(recordErr))
	}

	fields := []zap.Field{
		zap.String("request_id", call.record.RequestID),
		zap.String("session_id", call.record.SessionID),
		zap.String("kind", string(call.record.Kind)),
		zap.String("model", call.record.Model),
		zap.Int64("latency_ms", call.record.LatencyMs),
	}
	if err != nil {
		s.logger.Warn("provider call failed", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Info("provider call done", fields...)
}

// ListCalls returns recent provider calls for the session.
func (s *Service) ListCalls(ctx context.Context, sessionID string, limit int) ([]domain.CallRecord, error) {
	return s.store.ListCallRecords(ctx, sessionID, limit)
}
