package domain

// Message is a single conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered sequence of messages.
// Only the trailing assistant message may be mutated, while it streams.
type Conversation struct {
	Messages []Message `json:"messages"`
}

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
}

// AppendDelta extends the in-progress assistant message, starting one if the
// conversation does not end with an assistant turn.
func (c *Conversation) AppendDelta(text string) {
	n := len(c.Messages)
	if n == 0 || c.Messages[n-1].Role != RoleAssistant {
		c.Messages = append(c.Messages, Message{Role: RoleAssistant})
		n++
	}
	c.Messages[n-1].Content += text
}

// Last returns the final message, if any.
func (c *Conversation) Last() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}
