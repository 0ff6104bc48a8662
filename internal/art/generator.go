// Package art turns a feeling into a generated image by calling a
// Gemini-style generateContent endpoint.
package art

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const promptTemplate = "An abstract, dream-like, and ethereal digital art piece representing the feeling of: '%s'. Use a soft, pastel color palette with flowing lines and gentle gradients."

// Outcome is the result of a generation request that reached the model.
// It is either an Image or a Blocked refusal.
type Outcome interface {
	isOutcome()
}

// Image is a successfully generated picture.
type Image struct {
	Data     []byte
	MIMEType string
}

// Blocked means the model refused the request, usually on safety grounds.
type Blocked struct {
	Reason string
}

func (Image) isOutcome()   {}
func (Blocked) isOutcome() {}

// Generator calls the image model. Zero value is not usable; use New.
type Generator struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a generator for the given model and API key. An empty API
// key is rejected up front rather than on first use.
func New(model, apiKey string, logger *slog.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("art: API key is not configured")
	}
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		baseURL: defaultBaseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   genConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type genConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate renders feeling into an image. A refusal by the model is a
// Blocked outcome, not an error; errors mean the request itself failed.
func (g *Generator) Generate(ctx context.Context, feeling string) (Outcome, error) {
	if feeling == "" {
		return nil, fmt.Errorf("art: feeling cannot be empty")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(promptTemplate, feeling)}}}},
		Config:   genConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return nil, fmt.Errorf("art: failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("art: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("art: model request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("art: failed to read model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("image model returned an error", "status", resp.StatusCode)
		return nil, fmt.Errorf("art: model returned HTTP %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("art: failed to decode model response: %w", err)
	}

	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return Blocked{Reason: parsed.PromptFeedback.BlockReason}, nil
	}
	if len(parsed.Candidates) == 0 {
		return Blocked{Reason: "no candidates returned"}, nil
	}

	cand := parsed.Candidates[0]
	for _, p := range cand.Content.Parts {
		if p.InlineData == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("art: failed to decode image payload: %w", err)
		}
		return Image{Data: data, MIMEType: p.InlineData.MIMEType}, nil
	}
	if cand.FinishReason != "" && cand.FinishReason != "STOP" {
		return Blocked{Reason: cand.FinishReason}, nil
	}
	return Blocked{Reason: "response contained no image"}, nil
}
