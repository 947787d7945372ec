// Package domain defines the core domain models for the visualization studio.
package domain

import "fmt"

// ContextKey identifies one of the editable context documents.
type ContextKey string

const (
	ContextFacilitySpecs    ContextKey = "facility-specs"
	ContextDesignGuidelines ContextKey = "design-guidelines"
	ContextCompanyContext   ContextKey = "company-context"
)

// ContextKeys lists every context key in resolution order.
var ContextKeys = []ContextKey{
	ContextFacilitySpecs,
	ContextDesignGuidelines,
	ContextCompanyContext,
}

// ParseContextKey validates a context key.
func ParseContextKey(s string) (ContextKey, error) {
	for _, k := range ContextKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown context key: %s", s))
}

// Origin tags which tier supplied a resolved context value.
type Origin string

const (
	OriginOverride Origin = "override"
	OriginRemote   Origin = "remote"
	OriginDefault  Origin = "default"
)

// Role is the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Mode is the active studio mode.
type Mode string

const (
	ModeChat   Mode = "chat"
	ModeDirect Mode = "direct"
)

// CallKind is the kind of provider call recorded in the audit log.
type CallKind string

const (
	CallKindChat  CallKind = "chat"
	CallKindImage CallKind = "image"
)
