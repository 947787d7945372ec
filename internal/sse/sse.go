// Package sse frames relay events as a line-based event stream:
//
//	data: {"text":"..."}
//	data: {"error":"..."}
//	data: [DONE]
//
// Each frame is followed by a blank line.
package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"

	// MaxLineSize bounds a single frame on the consuming side.
	MaxLineSize = 5 * 1024 * 1024
)

// ErrUnterminated is reported when a stream ends without Done or an error.
const ErrUnterminated = "stream ended unexpectedly"

type textPayload struct {
	Text string `json:"text"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Encoder writes framed events, flushing after each one.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder creates an encoder. Flushing happens when w implements http.Flusher.
func NewEncoder(w io.Writer) *Encoder {
	f, _ := w.(http.Flusher)
	return &Encoder{w: w, flusher: f}
}

// Encode writes one event frame.
func (e *Encoder) Encode(ev domain.StreamEvent) error {
	frame, err := Frame(ev)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(e.w, frame); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// Frame renders an event as a complete frame including the blank-line separator.
func Frame(ev domain.StreamEvent) (string, error) {
	var data []byte
	var err error
	switch ev.Kind {
	case domain.StreamEventText:
		data, err = json.Marshal(textPayload{Text: ev.Text})
	case domain.StreamEventError:
		data, err = json.Marshal(errorPayload{Error: ev.Error})
	case domain.StreamEventDone:
		data = []byte(doneMarker)
	default:
		return "", fmt.Errorf("unknown event kind %d", ev.Kind)
	}
	if err != nil {
		return "", err
	}
	return dataPrefix + string(data) + "\n\n", nil
}

// ParseLine decodes one line of the stream. ok is false for lines that carry
// no event: blank lines, comments, other fields and malformed payloads.
func ParseLine(line string) (ev domain.StreamEvent, ok bool) {
	data, found := strings.CutPrefix(strings.TrimRight(line, "\r"), dataPrefix)
	if !found {
		return domain.StreamEvent{}, false
	}
	if data == doneMarker {
		return domain.DoneEvent(), true
	}

	var payload struct {
		Text  *string `json:"text"`
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return domain.StreamEvent{}, false
	}
	switch {
	case payload.Error != nil:
		return domain.ErrorEvent(*payload.Error), true
	case payload.Text != nil:
		return domain.TextEvent(*payload.Text), true
	}
	return domain.StreamEvent{}, false
}

// Decode consumes a framed stream and yields its events in order. Lines that
// cannot be parsed are skipped. The channel closes after the first terminal
// event; a stream that ends without one yields a synthetic error event.
func Decode(ctx context.Context, r io.Reader) <-chan domain.StreamEvent {
	out := make(chan domain.StreamEvent)

	go func() {
		defer close(out)

		send := func(ev domain.StreamEvent) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
		for scanner.Scan() {
			ev, ok := ParseLine(scanner.Text())
			if !ok {
				continue
			}
			if !send(ev) || ev.IsTerminal() {
				return
			}
		}

		msg := ErrUnterminated
		if err := scanner.Err(); err != nil {
			msg = fmt.Sprintf("%s: %v", ErrUnterminated, err)
		}
		send(domain.ErrorEvent(msg))
	}()

	return out
}
