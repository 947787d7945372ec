package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/prompt"
)

// NewStudioState returns the state of a fresh session.
func NewStudioState() *domain.StudioState {
	return &domain.StudioState{
		Messages: []domain.Message{{Role: domain.RoleAssistant, Content: prompt.InitialAssistantMessage}},
		History:  []string{},
		Mode:     domain.ModeChat,
	}
}

// LoadState returns the saved snapshot for the session, or a fresh one.
func (s *Service) LoadState(ctx context.Context, sessionID string) (*domain.StudioState, error) {
	state, err := s.store.LoadState(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if state == nil {
		return NewStudioState(), nil
	}
	state.Normalize()
	return state, nil
}

// SaveState replaces the session snapshot. Saving the same state twice has
// no further effect.
func (s *Service) SaveState(ctx context.Context, sessionID string, state *domain.StudioState) error {
	if state == nil {
		return domain.NewValidationError("State required")
	}
	if state.Mode != "" && state.Mode != domain.ModeChat && state.Mode != domain.ModeDirect {
		return domain.NewValidationError(fmt.Sprintf("Invalid mode: %s", state.Mode))
	}
	state.Normalize()
	if err := s.store.SaveState(ctx, sessionID, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// ClearState drops the session snapshot.
func (s *Service) ClearState(ctx context.Context, sessionID string) error {
	return s.store.DeleteState(ctx, sessionID)
}

// SaveImage stores a data URL image and returns the stored record.
func (s *Service) SaveImage(ctx context.Context, sessionID, data string) (*domain.StoredImage, error) {
	if !domain.IsDataURL(data) {
		return nil, domain.NewValidationError("Image must be a data URL")
	}
	image := &domain.StoredImage{
		ID:        uuid.New().String(),
		Data:      data,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.store.SaveImage(ctx, sessionID, image); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return image, nil
}

// GetImage returns a stored image.
func (s *Service) GetImage(ctx context.Context, sessionID, imageID string) (*domain.StoredImage, error) {
	return s.store.GetImage(ctx, sessionID, imageID)
}

// ListImages returns the session's images, newest first.
func (s *Service) ListImages(ctx context.Context, sessionID string) ([]domain.StoredImage, error) {
	return s.store.ListImages(ctx, sessionID)
}

// DeleteImage removes one image.
func (s *Service) DeleteImage(ctx context.Context, sessionID, imageID string) error {
	return s.store.DeleteImage(ctx, sessionID, imageID)
}

// ClearImages removes every image of the session.
func (s *Service) ClearImages(ctx context.Context, sessionID string) error {
	return s.store.ClearImages(ctx, sessionID)
}

// ListBlueprints returns the built-in blueprints followed by the session's
// custom ones.
func (s *Service) ListBlueprints(ctx context.Context, sessionID string) ([]domain.Blueprint, error) {
	custom, err := s.store.ListBlueprints(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Blueprint, 0, len(domain.DefaultBlueprints)+len(custom))
	out = append(out, domain.DefaultBlueprints...)
	return append(out, custom...), nil
}

// CreateBlueprint adds a custom blueprint.
func (s *Service) CreateBlueprint(ctx context.Context, sessionID string, bp domain.Blueprint) (*domain.Blueprint, error) {
	if bp.URL == "" {
		return nil, domain.NewValidationError("Blueprint image required")
	}
	bp.Name = strings.TrimSpace(bp.Name)
	if bp.Name == "" {
		bp.Name = "Custom blueprint"
	}
	if bp.Description == "" {
		bp.Description = "Custom uploaded blueprint"
	}
	bp.ID = "custom-" + uuid.New().String()[:8]
	bp.IsCustom = true

	if err := s.store.CreateBlueprint(ctx, sessionID, &bp); err != nil {
		return nil, fmt.Errorf("failed to save blueprint: %w", err)
	}
	return &bp, nil
}

// DeleteBlueprint removes a custom blueprint. Built-in blueprints cannot be
// deleted.
func (s *Service) DeleteBlueprint(ctx context.Context, sessionID, blueprintID string) error {
	for _, bp := range domain.DefaultBlueprints {
		if bp.ID == blueprintID {
			return domain.NewValidationError("Built-in blueprints cannot be deleted")
		}
	}
	return s.store.DeleteBlueprint(ctx, sessionID, blueprintID)
}
