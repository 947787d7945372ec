package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/adapter/gemini"
	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/policy"
	"github.com/xiaot623/gogo/vizstudio/internal/prompt"
)

// Generation defaults.
const (
	DefaultAspectRatio = "16:9"
	DefaultImageSize   = "2K"
)

// Instructions prepended to the prompt when an image is supplied.
const (
	EditInstruction      = "Edit this image based on the following instructions:"
	BlueprintInstruction = "CRITICAL: Follow this architectural floor plan EXACTLY. Match the exact layout, position of tanks, walls, and structure shown in this blueprint:"
)

// GenerateInput is an image generation request.
type GenerateInput struct {
	SessionID      string `json:"-"`
	Prompt         string `json:"prompt"`
	APIKey         string `json:"apiKey"`
	IncludeContext *bool  `json:"includeContext,omitempty"`
	CustomContext  string `json:"customContext,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	ImageSize      string `json:"imageSize,omitempty"`
	EditImage      string `json:"editImage,omitempty"`
	ReferenceImage string `json:"referenceImage,omitempty"`
}

// GenerateResult is a generated image.
type GenerateResult struct {
	ID    string `json:"id"`
	Image string `json:"image"`
	Text  string `json:"text"`
}

func (in *GenerateInput) applyDefaults() {
	if in.IncludeContext == nil {
		include := true
		in.IncludeContext = &include
	}
	if in.AspectRatio == "" {
		in.AspectRatio = DefaultAspectRatio
	}
	if in.ImageSize == "" {
		in.ImageSize = DefaultImageSize
	}
}

// Generate produces an image from the prompt and stores it for the session.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, domain.NewValidationError("Prompt required")
	}
	if in.APIKey == "" {
		return nil, domain.NewValidationError("API key required")
	}
	in.applyDefaults()

	if err := s.checkPolicy(ctx, in); err != nil {
		return nil, err
	}

	parts, err := s.buildParts(ctx, in)
	if err != nil {
		return nil, err
	}

	req := &gemini.ContentRequest{
		APIKey:      in.APIKey,
		Model:       s.config.ImageModel,
		Parts:       parts,
		AspectRatio: in.AspectRatio,
		ImageSize:   in.ImageSize,
	}

	call := s.beginCall(in.SessionID, domain.CallKindImage, req.Model)
	resp, err := s.gemini.GenerateContent(ctx, req)
	if err != nil {
		err = NormalizeProviderError(err)
		s.finishCall(ctx, call, err)
		return nil, err
	}

	result, err := pickImage(resp)
	s.finishCall(ctx, call, err)
	if err != nil {
		return nil, err
	}

	stored := &domain.StoredImage{
		ID:        result.ID,
		Data:      result.Image,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.store.SaveImage(ctx, in.SessionID, stored); err != nil {
		s.logger.Warn("failed to store generated image", zap.String("image_id", stored.ID), zap.Error(err))
	}
	return result, nil
}

func (s *Service) checkPolicy(ctx context.Context, in GenerateInput) error {
	if s.policyEngine == nil {
		return nil
	}
	decision, err := s.policyEngine.Evaluate(ctx, policy.Input{
		AspectRatio: in.AspectRatio,
		ImageSize:   in.ImageSize,
	})
	if err != nil {
		return err
	}
	if !decision.Allow {
		msg := "Request denied by generation policy"
		if len(decision.Reasons) > 0 {
			msg = strings.Join(decision.Reasons, "; ")
		}
		return domain.NewValidationError(msg)
	}
	return nil
}

// buildParts assembles the request parts: an optional edit or blueprint
// image with its instruction, then the prompt text.
func (s *Service) buildParts(ctx context.Context, in GenerateInput) ([]domain.Part, error) {
	var parts []domain.Part
	includeContext := *in.IncludeContext

	switch {
	case in.EditImage != "":
		img, err := domain.ParseDataURL(in.EditImage)
		if err != nil {
			return nil, err
		}
		parts = append(parts, domain.TextPart{Text: EditInstruction}, img)
	case domain.IsDataURL(in.ReferenceImage):
		img, err := domain.ParseDataURL(in.ReferenceImage)
		if err != nil {
			return nil, err
		}
		parts = append(parts, domain.TextPart{Text: BlueprintInstruction}, img)
		includeContext = false
	case in.ReferenceImage != "":
		// External URLs cannot be sent inline to the provider.
		s.logger.Debug("ignoring non-data reference image", zap.String("session_id", in.SessionID))
	}

	customContext := in.CustomContext
	if includeContext && customContext == "" && s.resolver != nil {
		customContext = s.resolver.Resolve(ctx, in.SessionID, domain.ContextFacilitySpecs).Content
	}

	text := prompt.BuildPromptWithContext(in.Prompt, includeContext, customContext)
	return append(parts, domain.TextPart{Text: text}), nil
}

// pickImage extracts the image and the last text part of the first candidate.
func pickImage(resp *gemini.ContentResponse) (*GenerateResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, domain.ErrNoImageGenerated
	}

	var (
		image *domain.InlineImage
		text  string
	)
	for _, p := range resp.Candidates[0].Parts {
		switch p := p.(type) {
		case domain.TextPart:
			text = p.Text
		case domain.InlineImage:
			img := p
			image = &img
		}
	}
	if image == nil {
		return nil, domain.ErrNoImageInResponse
	}

	return &GenerateResult{
		ID:    uuid.New().String(),
		Image: image.DataURL(),
		Text:  text,
	}, nil
}
