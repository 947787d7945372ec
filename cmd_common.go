package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/xiaot623/gogo/vizstudio/internal/client"
	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

func newStudioClient() *client.Client {
	return client.NewClient(serverURL, sessionID)
}

func resolveAPIKey() (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	return "", errors.New("API key required: pass --api-key or set GEMINI_API_KEY")
}

// imageRef turns a flag value into something the studio accepts: URLs and
// data URLs pass through, anything else is read as a local file.
func imageRef(ref string) (string, error) {
	if ref == "" || domain.IsDataURL(ref) || strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "/blueprints/") {
		return ref, nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	img := domain.InlineImage{MIMEType: http.DetectContentType(data), Data: data}
	return img.DataURL(), nil
}

// writeImage saves a data URL image under dir and returns the file path.
func writeImage(dataURL, dir, id string) (string, error) {
	img, err := domain.ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}
	ext := ".png"
	switch img.MIMEType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	if id == "" {
		id = "image"
	}
	path := filepath.Join(dir, "vizstudio-"+id+ext)
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}
