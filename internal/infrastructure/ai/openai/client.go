// Package openai provides the GPT-backed recipe extraction client
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/internal/ports/outbound"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openai.com/v1"

// systemPrompt instructs the model to answer with nothing but the
// recipe JSON. The product is French-first, so the prompt is too.
const systemPrompt = `Tu es un assistant culinaire expert. Ta tâche est d'extraire une recette de cuisine à partir du contenu fourni.

CRITIQUE : Tu dois répondre UNIQUEMENT avec un objet JSON valide au format exact ci-dessous. N'inclus aucun texte explicatif, aucun formatage markdown, rien d'autre que le JSON.

Format JSON requis :
{
  "title": "Nom de la recette",
  "description": "Brève description du plat",
  "prep_time": 15,
  "cook_time": 30,
  "servings": 4,
  "ingredients": [
    {
      "name": "nom de l'ingrédient",
      "quantity": "200",
      "unit": "g"
    }
  ],
  "steps": [
    {
      "step_number": 1,
      "instruction": "Instruction détaillée"
    }
  ]
}

Les durées sont en minutes. Si une information est absente du contenu, utilise 0 pour les nombres et une chaîne vide pour les textes. Si le contenu ne contient aucune recette, réponds avec le JSON {"error": "no_recipe"}.

Rappel : réponds UNIQUEMENT avec du JSON valide.`

// Client implements the RecipeExtractor interface using the OpenAI API
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	visionModel string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

var _ outbound.RecipeExtractor = (*Client)(nil)

// NewClient creates a new extraction client
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		apiKey:      cfg.AI.OpenAIKey,
		baseURL:     defaultBaseURL,
		model:       cfg.AI.Model,
		visionModel: cfg.AI.VisionModel,
		maxTokens:   cfg.AI.MaxTokens,
		temperature: cfg.AI.Temperature,
		client: &http.Client{
			Timeout: cfg.AI.RequestTimeout,
		},
		logger: logger.Named("openai"),
	}
}

// WithBaseURL points the client at an alternate endpoint. Used by
// tests to target a fake upstream.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// OpenAI API structures
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// extractionPayload mirrors the JSON the model is instructed to emit.
type extractionPayload struct {
	Error       string              `json:"error"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	PrepTime    int                 `json:"prep_time"`
	CookTime    int                 `json:"cook_time"`
	Servings    int                 `json:"servings"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Steps       []recipe.Step       `json:"steps"`
}

// ExtractFromText parses recipe text into structured content
func (c *Client) ExtractFromText(ctx context.Context, text string) (*recipe.Content, error) {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Voici le contenu :\n\n" + text},
	}

	raw, err := c.complete(ctx, c.model, messages)
	if err != nil {
		return nil, err
	}
	return parseExtraction(raw)
}

// ExtractFromImage parses a photographed recipe into structured content
func (c *Client) ExtractFromImage(ctx context.Context, imageData []byte, mimeType string) (*recipe.Content, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: []contentPart{
			{Type: "text", Text: "Extrais la recette de cette image."},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		}},
	}

	raw, err := c.complete(ctx, c.visionModel, messages)
	if err != nil {
		return nil, err
	}
	return parseExtraction(raw)
}

func (c *Client) complete(ctx context.Context, model string, messages []chatMessage) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.NewAppError(
			apperrors.CodeExternalServiceError,
			"External service error",
			"Failed to communicate with OpenAI",
		).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("completion request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("model", model),
		)
		return "", apperrors.NewAppError(
			apperrors.CodeExternalServiceError,
			"External service error",
			fmt.Sprintf("OpenAI returned status %d", resp.StatusCode),
		)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", apperrors.NewExtractionFailedError(fmt.Errorf("completion has no choices"))
	}

	return completion.Choices[0].Message.Content, nil
}

// parseExtraction decodes the model output into recipe content. The
// boundary is strict: either the payload parses into a usable recipe
// or the whole extraction fails. No partial results, no defaults.
func parseExtraction(raw string) (*recipe.Content, error) {
	cleaned := stripFences(raw)

	var payload extractionPayload
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	if err := decoder.Decode(&payload); err != nil {
		return nil, apperrors.NewExtractionFailedError(err)
	}

	if payload.Error != "" {
		return nil, apperrors.NewExtractionFailedError(fmt.Errorf("model reported: %s", payload.Error))
	}
	if strings.TrimSpace(payload.Title) == "" {
		return nil, apperrors.NewExtractionFailedError(fmt.Errorf("extracted recipe has no title"))
	}

	content := &recipe.Content{
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		PrepTime:    payload.PrepTime,
		CookTime:    payload.CookTime,
		Servings:    payload.Servings,
		Ingredients: payload.Ingredients,
		Steps:       payload.Steps,
	}
	if content.Ingredients == nil {
		content.Ingredients = []recipe.Ingredient{}
	}
	if content.Steps == nil {
		content.Steps = []recipe.Step{}
	}
	return content, nil
}

// stripFences removes a surrounding markdown code fence, which models
// add despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
