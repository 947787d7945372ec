package domain

import "time"

// MaxHistory is the number of generated images kept in the studio state.
const MaxHistory = 10

// StudioState is the persisted client snapshot, loaded on start and saved on change.
type StudioState struct {
	APIKey         string    `json:"apiKey"`
	Messages       []Message `json:"messages"`
	History        []string  `json:"history"`
	GeneratedImage string    `json:"generatedImage,omitempty"`
	Mode           Mode      `json:"mode"`
}

// Normalize fills defaults and trims history to MaxHistory entries.
func (s *StudioState) Normalize() {
	if s.Mode == "" {
		s.Mode = ModeChat
	}
	if len(s.History) > MaxHistory {
		s.History = s.History[:MaxHistory]
	}
}

// PushHistory records a generated image as the newest history entry.
func (s *StudioState) PushHistory(image string) {
	s.GeneratedImage = image
	s.History = append([]string{image}, s.History...)
	s.Normalize()
}

// StoredImage is an entry in the session image store.
type StoredImage struct {
	ID        string `json:"id"`
	Data      string `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Blueprint is a reference floor plan that can steer image generation.
type Blueprint struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	IsCustom    bool   `json:"isCustom"`
}

// DefaultBlueprints ship with the studio.
var DefaultBlueprints = []Blueprint{
	{
		ID:          "main-building",
		Name:        "Main Building Plan",
		URL:         "/blueprints/main-building-architectural_plan.jpg",
		Description: "2 halls, 12 tanks (6 per hall)",
	},
	{
		ID:          "quarantine",
		Name:        "Quarantine Building",
		URL:         "/blueprints/quarantine-plan.jpg",
		Description: "14 smaller tanks",
	},
	{
		ID:          "full-facility",
		Name:        "Full Facility Plan",
		URL:         "/blueprints/full-facility-plan.png",
		Description: "Main building + quarantine + external tanks",
	},
}

// CallRecord audits one provider call.
type CallRecord struct {
	RequestID string    `json:"request_id"`
	SessionID string    `json:"session_id"`
	Kind      CallKind  `json:"kind"`
	Model     string    `json:"model"`
	LatencyMs int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is a server-side file editable through the documents endpoint.
type Document struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"-" yaml:"path"`
}
