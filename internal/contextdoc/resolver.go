// Package contextdoc resolves the editable context documents that are
// injected into prompts: session override, then remote file, then the
// compiled default.
package contextdoc

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// OverrideLookup returns the override for a key, if present.
type OverrideLookup func() (string, bool)

// RemoteFetch returns the remote text for a key or an error.
type RemoteFetch func() (string, error)

// Resolve applies the three-tier fallback. It never fails: the default is
// returned whenever neither the override nor the remote tier supplies a value.
func Resolve(lookup OverrideLookup, fetch RemoteFetch, defaultText string) (string, domain.Origin) {
	if lookup != nil {
		if v, ok := lookup(); ok {
			return v, domain.OriginOverride
		}
	}
	if fetch != nil {
		if v, err := fetch(); err == nil {
			return v, domain.OriginRemote
		}
	}
	return defaultText, domain.OriginDefault
}

// OverrideStore persists session-scoped overrides.
type OverrideStore interface {
	GetOverride(ctx context.Context, sessionID string, key domain.ContextKey) (string, bool, error)
	SetOverride(ctx context.Context, sessionID string, key domain.ContextKey, content string) error
	DeleteOverride(ctx context.Context, sessionID string, key domain.ContextKey) error
}

// RemoteFetcher reads a named server file.
type RemoteFetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// Resolver resolves, saves and resets context documents for a session.
type Resolver struct {
	overrides OverrideStore
	remote    RemoteFetcher
	logger    *zap.Logger
}

// NewResolver creates a resolver. remote may be nil to skip the remote tier.
func NewResolver(overrides OverrideStore, remote RemoteFetcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		overrides: overrides,
		remote:    remote,
		logger:    logger,
	}
}

// Resolve returns the active document for key.
func (r *Resolver) Resolve(ctx context.Context, sessionID string, key domain.ContextKey) domain.ContextDocument {
	lookup := func() (string, bool) {
		v, ok, err := r.overrides.GetOverride(ctx, sessionID, key)
		if err != nil {
			r.logger.Warn("override lookup failed", zap.String("key", string(key)), zap.Error(err))
			return "", false
		}
		return v, ok && v != ""
	}

	var fetch RemoteFetch
	if r.remote != nil {
		fetch = func() (string, error) {
			v, err := r.remote.Fetch(ctx, key.RemoteFile())
			if err != nil {
				r.logger.Debug("remote context unavailable, using default",
					zap.String("key", string(key)), zap.Error(err))
			}
			return v, err
		}
	}

	content, origin := Resolve(lookup, fetch, key.Default())
	return domain.ContextDocument{Key: key, Content: content, Origin: origin}
}

// ResolveAll resolves every context key concurrently, in ContextKeys order.
func (r *Resolver) ResolveAll(ctx context.Context, sessionID string) []domain.ContextDocument {
	docs := make([]domain.ContextDocument, len(domain.ContextKeys))
	var g errgroup.Group
	for i, key := range domain.ContextKeys {
		g.Go(func() error {
			docs[i] = r.Resolve(ctx, sessionID, key)
			return nil
		})
	}
	_ = g.Wait()
	return docs
}

// Save stores content as the session override for key.
func (r *Resolver) Save(ctx context.Context, sessionID string, key domain.ContextKey, content string) error {
	if err := r.overrides.SetOverride(ctx, sessionID, key, content); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Reset deletes the override for key and returns the freshly resolved document.
func (r *Resolver) Reset(ctx context.Context, sessionID string, key domain.ContextKey) (domain.ContextDocument, error) {
	if err := r.overrides.DeleteOverride(ctx, sessionID, key); err != nil {
		return domain.ContextDocument{}, fmt.Errorf("failed to reset %s: %w", key, err)
	}
	return r.Resolve(ctx, sessionID, key), nil
}
