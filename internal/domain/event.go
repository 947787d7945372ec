package domain

// StreamEventKind discriminates StreamEvent.
type StreamEventKind int

const (
	StreamEventText StreamEventKind = iota
	StreamEventError
	StreamEventDone
)

// StreamEvent is one unit of relay output: Text, Error or Done.
// A stream is zero or more Text events followed by exactly one terminal
// event (Error or Done).
type StreamEvent struct {
	Kind  StreamEventKind
	Text  string
	Error string
}

// TextEvent builds a Text event.
func TextEvent(text string) StreamEvent {
	return StreamEvent{Kind: StreamEventText, Text: text}
}

// ErrorEvent builds a terminal Error event.
func ErrorEvent(msg string) StreamEvent {
	return StreamEvent{Kind: StreamEventError, Error: msg}
}

// DoneEvent builds the terminal Done event.
func DoneEvent() StreamEvent {
	return StreamEvent{Kind: StreamEventDone}
}

// IsTerminal reports whether no further events may follow.
func (e StreamEvent) IsTerminal() bool {
	return e.Kind == StreamEventError || e.Kind == StreamEventDone
}
