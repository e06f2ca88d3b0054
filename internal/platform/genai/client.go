// Package genai wraps the Gemini API for the chat assistant and the catalog
// text/image generators.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrUnavailable is returned when no API key is configured.
var ErrUnavailable = errors.New("generative AI is not configured")

// ErrEmptyResponse is returned when the model produced no usable output.
var ErrEmptyResponse = errors.New("model returned an empty response")

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn in a conversation.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewClient returns a client, or (nil, ErrUnavailable) when apiKey is empty.
func NewClient(ctx context.Context, apiKey, textModel, imageModel string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

// Chat sends the conversation with a system instruction and returns the model's text.
func (c *Client) Chat(ctx context.Context, system string, history []Message) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Complete is a single-turn prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, "", []Message{{Role: RoleUser, Text: prompt}})
}

// GenerateImage returns the bytes and MIME type of the first generated image.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "3:4",
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, "", fmt.Errorf("GenAI image generation failed: %w", err)
	}
	for _, img := range resp.GeneratedImages {
		if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := img.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return img.Image.ImageBytes, mimeType, nil
	}
	return nil, "", ErrEmptyResponse
}
