package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"ecolens/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const visionModelName = "gemini-1.5-flash"

// Global Gemini client instance. Nil when no API key is configured, in which
// case classification falls back to synthetic results.
var geminiClient *genai.Client

// InitVisionService initializes the Gemini client using the API key from the config
func InitVisionService(cfg *config.Config) {
	if cfg.Gemini.ApiKey == "" {
		log.Println("No Gemini API key configured, classification will use fallback results")
		return
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.ApiKey))
	if err != nil {
		log.Printf("Failed to initialize Gemini client, falling back to synthetic results: %v", err)
		return
	}
	geminiClient = client
}

// generateVisionText sends one or more JPEG frames plus a prompt to the model
// and returns the cleaned text response.
func generateVisionText(ctx context.Context, prompt string, images ...[]byte) (string, error) {
	if geminiClient == nil {
		return "", errors.New("gemini client not initialized")
	}

	model := geminiClient.GenerativeModel(visionModelName)
	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.ImageData("jpeg", img))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty model response")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return cleanModelOutput(string(text)), nil
		}
	}
	return "", errors.New("no text part in model response")
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
