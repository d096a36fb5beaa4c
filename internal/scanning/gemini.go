package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiTimeout = 30 * time.Second

// Gemini implements the Scanner interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Scanner instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// RecognizeText transcribes the receipt image
func (g *Gemini) RecognizeText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	pngData, err := toPNG(imageData, contentType)
	if err != nil {
		return "", err
	}

	// genai.ImageData expects the format suffix ("png"), not the MIME type
	return g.generate(ctx, genai.ImageData("png", pngData), genai.Text(transcribePrompt))
}

// SummarizeItems asks Gemini for the item list as JSON
func (g *Gemini) SummarizeItems(ctx context.Context, receiptText string) (string, error) {
	return g.generate(ctx, genai.Text(itemsPrompt(receiptText)))
}

func (g *Gemini) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	parts = append([]genai.Part{genai.Text(systemPrompt)}, parts...)
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
