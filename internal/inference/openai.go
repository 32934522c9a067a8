package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/pliro-dev/pliro/internal/config"
)

const systemPrompt = "You are a Expert in Finding Compliance Standards for new Product that are to be launched."

// OpenAIClient calls the chat-completions API with a strict JSON-schema
// response format so replies always deserialize into the target type.
type OpenAIClient struct {
	client *openai.Client
	model  string

	mu      sync.Mutex
	schemas map[string]*jsonschema.Definition
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	return &OpenAIClient{
		client:  openai.NewClient(cfg.OpenAIAPIKey),
		model:   cfg.OpenAIModel,
		schemas: make(map[string]*jsonschema.Definition),
	}
}

func (c *OpenAIClient) CompleteStructured(ctx context.Context, prompt string, schemaName string, target any) (string, error) {
	schema, err := c.schemaFor(schemaName, target)

	if err != nil {
		return "", err
	}

	response, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	})

	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	content := response.Choices[0].Message.Content

	if err := json.Unmarshal([]byte(content), target); err != nil {
		return "", fmt.Errorf("failed to parse structured response: %w", err)
	}

	return content, nil
}

// schemaFor caches generated schemas. Generation reflects over the whole
// target type, and the handful of target shapes never changes at runtime.
func (c *OpenAIClient) schemaFor(name string, target any) (*jsonschema.Definition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if schema, ok := c.schemas[name]; ok {
		return schema, nil
	}

	schema, err := jsonschema.GenerateSchemaForType(target)

	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for %s: %w", name, err)
	}

	c.schemas[name] = schema

	return schema, nil
}
