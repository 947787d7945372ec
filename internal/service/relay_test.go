package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/vizstudio/internal/adapter/gemini"
	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

func collect(ch <-chan domain.StreamEvent) []domain.StreamEvent {
	var events []domain.StreamEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func userMsg(s string) domain.Message      { return domain.Message{Role: domain.RoleUser, Content: s} }
func assistantMsg(s string) domain.Message { return domain.Message{Role: domain.RoleAssistant, Content: s} }

func TestStartValidation(t *testing.T) {
	svc, _ := newTestService(t, &stubClient{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input ChatInput
		want  string
	}{
		{"missing messages", ChatInput{APIKey: "k"}, "Messages required"},
		{"missing api key", ChatInput{Messages: []domain.Message{userMsg("hi")}}, "API key required"},
		{"api key checked first", ChatInput{}, "API key required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := svc.Start(ctx, tt.input)
			assert.Nil(t, ch)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, http.StatusBadRequest, StatusCode(err))
		})
	}
}

func TestNormalizeHistory(t *testing.T) {
	messages := []domain.Message{
		assistantMsg("greeting"),
		assistantMsg("second greeting"),
		userMsg("first question"),
		assistantMsg("answer"),
		userMsg("second question"),
		userMsg("new turn"),
	}

	want := []gemini.Turn{
		{Role: gemini.RoleUser, Text: "first question"},
		{Role: gemini.RoleModel, Text: "answer"},
		{Role: gemini.RoleUser, Text: "second question"},
	}
	if diff := cmp.Diff(want, NormalizeHistory(messages)); diff != "" {
		t.Errorf("NormalizeHistory mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeHistoryWithoutUserTurns(t *testing.T) {
	got := NormalizeHistory([]domain.Message{assistantMsg("greeting"), userMsg("hello")})
	assert.Empty(t, got)
	assert.Nil(t, NormalizeHistory(nil))
}

func TestStartStreamsTextThenDone(t *testing.T) {
	stream := gemini.NewSliceStream([]string{"Hel", "", "lo"}, nil)
	client := &stubClient{stream: stream}
	svc, db := newTestService(t, client)

	ch, err := svc.Start(context.Background(), ChatInput{
		SessionID: "s1",
		APIKey:    "key",
		Messages:  []domain.Message{assistantMsg("greeting"), userMsg("hello")},
	})
	require.NoError(t, err)

	want := []domain.StreamEvent{
		domain.TextEvent("Hel"),
		domain.TextEvent("lo"),
		domain.DoneEvent(),
	}
	if diff := cmp.Diff(want, collect(ch)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, stream.Closed())

	req := client.lastChat(t)
	assert.Equal(t, "key", req.APIKey)
	assert.Equal(t, "hello", req.Message)
	assert.Empty(t, req.History)

	calls, err := db.ListCallRecords(context.Background(), "s1", 10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, domain.CallKindChat, calls[0].Kind)
	assert.Empty(t, calls[0].Error)
}

func TestStartMidStreamErrorIsTerminal(t *testing.T) {
	stream := gemini.NewSliceStream([]string{"partial"}, errors.New("connection reset by peer"))
	svc, db := newTestService(t, &stubClient{stream: stream})

	ch, err := svc.Start(context.Background(), ChatInput{
		SessionID: "s1",
		APIKey:    "key",
		Messages:  []domain.Message{userMsg("hello")},
	})
	require.NoError(t, err)

	events := collect(ch)
	want := []domain.StreamEvent{
		domain.TextEvent("partial"),
		domain.ErrorEvent("connection reset by peer"),
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	terminal := 0
	for _, ev := range events {
		if ev.IsTerminal() {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)

	calls, err := db.ListCallRecords(context.Background(), "s1", 10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "connection reset by peer", calls[0].Error)
}

func TestStartPreStreamProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		msg    string
		status int
	}{
		{"overloaded", errors.New("googleapi: Error 503: The model is overloaded"), MsgOverloaded, http.StatusServiceUnavailable},
		{"invalid key", errors.New("API key not valid. Please pass a valid API key. INVALID_ARGUMENT"), MsgInvalidAPIKey, http.StatusUnauthorized},
		{"generic", errors.New("quota exceeded"), "quota exceeded", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := newTestService(t, &stubClient{streamErr: tt.err})

			ch, err := svc.Start(context.Background(), ChatInput{
				SessionID: "s1",
				APIKey:    "key",
				Messages:  []domain.Message{userMsg("hello")},
			})
			assert.Nil(t, ch)
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
			assert.Equal(t, tt.status, StatusCode(err))
			assert.ErrorIs(t, err, tt.err)

			calls, err := db.ListCallRecords(context.Background(), "s1", 10)
			require.NoError(t, err)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.msg, calls[0].Error)
		})
	}
}

func TestStartStopsWhenCallerGoesAway(t *testing.T) {
	chunks := make([]string, 100)
	for i := range chunks {
		chunks[i] = "x"
	}
	stream := gemini.NewSliceStream(chunks, nil)
	svc, _ := newTestService(t, &stubClient{stream: stream})

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := svc.Start(ctx, ChatInput{
		APIKey:   "key",
		Messages: []domain.Message{userMsg("hello")},
	})
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, domain.TextEvent("x"), first)
	cancel()

	// The channel must close without the caller reading every chunk.
	rest := collect(ch)
	assert.Less(t, len(rest), len(chunks))
	assert.True(t, stream.Closed())
}

func TestStartResolvesOmittedContexts(t *testing.T) {
	client := &stubClient{stream: gemini.NewSliceStream(nil, nil)}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	require.NoError(t, svc.Resolver().Save(ctx, "s1", domain.ContextDesignGuidelines, "Use brushed steel everywhere"))

	ch, err := svc.Start(ctx, ChatInput{
		SessionID:      "s1",
		APIKey:         "key",
		Messages:       []domain.Message{userMsg("hello")},
		CompanyContext: "Supplied company context",
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.StreamEvent{domain.DoneEvent()}, collect(ch))

	system := client.lastChat(t).SystemInstruction
	assert.Contains(t, system, "Use brushed steel everywhere")
	assert.Contains(t, system, "Supplied company context")
	assert.Contains(t, system, domain.DefaultFacilitySpecs)
	assert.NotContains(t, system, domain.DefaultCompanyContext)
}

func TestStartEmptyOverrideUsesDefault(t *testing.T) {
	client := &stubClient{stream: gemini.NewSliceStream(nil, nil)}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	require.NoError(t, svc.Resolver().Save(ctx, "s1", domain.ContextFacilitySpecs, ""))

	ch, err := svc.Start(ctx, ChatInput{
		SessionID: "s1",
		APIKey:    "key",
		Messages:  []domain.Message{userMsg("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.StreamEvent{domain.DoneEvent()}, collect(ch))

	assert.Contains(t, client.lastChat(t).SystemInstruction, domain.DefaultFacilitySpecs)
}

func TestNormalizeProviderError(t *testing.T) {
	assert.Nil(t, NormalizeProviderError(nil))

	ve := domain.NewValidationError("bad")
	assert.Same(t, ve, NormalizeProviderError(ve))

	assert.ErrorIs(t, NormalizeProviderError(context.Canceled), context.Canceled)

	var pe *domain.ProviderError
	err := NormalizeProviderError(errors.New("Service Overloaded"))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.ProviderOverloaded, pe.Category)

	err = NormalizeProviderError(errors.New("HTTP 401 Unauthorized"))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.ProviderInvalidCredential, pe.Category)

	// Already normalized errors are not re-wrapped.
	assert.Same(t, err, NormalizeProviderError(err))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(domain.NewValidationError("x")))
	assert.Equal(t, http.StatusNotFound, StatusCode(domain.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(domain.ErrNoImageGenerated))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}
