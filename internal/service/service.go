// Package service implements the studio's use cases on top of the store,
// the context resolver and the provider client.
package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/adapter/gemini"
	"github.com/xiaot623/gogo/vizstudio/internal/config"
	"github.com/xiaot623/gogo/vizstudio/internal/contextdoc"
	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/policy"
	store "github.com/xiaot623/gogo/vizstudio/internal/repository"
)

type Service struct {
	store        store.Store
	resolver     *contextdoc.Resolver
	gemini       gemini.Client
	config       *config.Config
	policyEngine *policy.Engine
	documents    map[string]domain.Document
	logger       *zap.Logger
	now          func() time.Time
}

func New(store store.Store, resolver *contextdoc.Resolver, client gemini.Client, cfg *config.Config, policyEngine *policy.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:        store,
		resolver:     resolver,
		gemini:       client,
		config:       cfg,
		policyEngine: policyEngine,
		documents:    newDocumentRegistry(cfg.Documents),
		logger:       logger,
		now:          time.Now,
	}
}

// Resolver exposes the context resolver used by the service.
func (s *Service) Resolver() *contextdoc.Resolver {
	return s.resolver
}
