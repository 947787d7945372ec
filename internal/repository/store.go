// Package store defines the storage interface and its SQLite implementation.
package store

import (
	"context"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// Store defines the interface for session-scoped persistence.
type Store interface {
	// Context override operations
	GetOverride(ctx context.Context, sessionID string, key domain.ContextKey) (string, bool, error)
	SetOverride(ctx context.Context, sessionID string, key domain.ContextKey, content string) error
	DeleteOverride(ctx context.Context, sessionID string, key domain.ContextKey) error

	// Studio state operations
	LoadState(ctx context.Context, sessionID string) (*domain.StudioState, error)
	SaveState(ctx context.Context, sessionID string, state *domain.StudioState) error
	DeleteState(ctx context.Context, sessionID string) error

	// Image operations
	SaveImage(ctx context.Context, sessionID string, image *domain.StoredImage) error
	GetImage(ctx context.Context, sessionID, imageID string) (*domain.StoredImage, error)
	ListImages(ctx context.Context, sessionID string) ([]domain.StoredImage, error)
	DeleteImage(ctx context.Context, sessionID, imageID string) error
	ClearImages(ctx context.Context, sessionID string) error

	// Blueprint operations
	CreateBlueprint(ctx context.Context, sessionID string, blueprint *domain.Blueprint) error
	ListBlueprints(ctx context.Context, sessionID string) ([]domain.Blueprint, error)
	DeleteBlueprint(ctx context.Context, sessionID, blueprintID string) error

	// Call audit operations
	CreateCallRecord(ctx context.Context, record *domain.CallRecord) error
	ListCallRecords(ctx context.Context, sessionID string, limit int) ([]domain.CallRecord, error)

	// Lifecycle
	Close() error
}
