package service

import (
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

func newDocumentRegistry(docs []domain.Document) map[string]domain.Document {
	registry := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		registry[d.ID] = d
	}
	return registry
}

func (s *Service) document(id string) (domain.Document, error) {
	doc, ok := s.documents[id]
	if !ok {
		return domain.Document{}, domain.NewValidationError("Invalid document ID")
	}
	return doc, nil
}

// Documents lists the editable documents.
func (s *Service) Documents() []domain.Document {
	return slices.Clone(s.config.Documents)
}

// ReadDocument returns the content and display name of a document.
func (s *Service) ReadDocument(id string) (content, name string, err error) {
	doc, err := s.document(id)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		s.logger.Error("failed to read document", zap.String("doc", id), zap.String("path", doc.Path), zap.Error(err))
		return "", "", &domain.DocumentError{Op: domain.DocumentRead, Name: doc.Name, Err: err}
	}
	return string(data), doc.Name, nil
}

// WriteDocument overwrites a document and returns its display name.
func (s *Service) WriteDocument(id, content string) (string, error) {
	doc, err := s.document(id)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(doc.Path, []byte(content), 0o644); err != nil {
		s.logger.Error("failed to write document", zap.String("doc", id), zap.String("path", doc.Path), zap.Error(err))
		return "", &domain.DocumentError{Op: domain.DocumentWrite, Name: doc.Name, Err: err}
	}
	return doc.Name, nil
}
