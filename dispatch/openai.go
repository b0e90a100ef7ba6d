package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/lumen-ai/lumen/registry"
)

// openaiTransport speaks the OpenAI-compatible chat completions API shared by
// DeepSeek, Groq, OpenRouter, and the Pollinations chat endpoint.
type openaiTransport struct {
	url string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
	Stream    bool          `json:"stream"`
}

func (t openaiTransport) complete(ctx context.Context, s *Service, model registry.Model, req Request) (Result, error) {
	apiKey, ok := s.Keys[model.Provider]
	if !ok {
		return Result{}, &MissingKeyError{Provider: model.Provider}
	}

	input := req.Input
	if req.WebSearch {
		input = webSearchRewrite(input)
	}

	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.History {
		content := m.Content
		if m.IsImage {
			content = ImagePlaceholder
		}
		messages = append(messages, chatMessage{Role: m.Role, Content: content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: input})

	jsonData, err := json.Marshal(chatRequest{
		Model:     model.ID,
		Messages:  messages,
		MaxTokens: 4096,
		Stream:    false,
	})
	if err != nil {
		return Result{}, wrapNetErr(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", t.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return Result{}, wrapNetErr(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}
	if model.Provider == registry.ProviderOpenRouter {
		httpReq.Header.Set("HTTP-Referer", "https://lumen-ai.local")
		httpReq.Header.Set("X-Title", "Lumen AI")
	}

	resp, err := s.httpClient().Do(httpReq)
	if err != nil {
		return Result{}, wrapNetErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, &CallError{Status: resp.StatusCode, Message: chatErrorMessage(body)}
	}

	var respBody struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return Result{}, wrapNetErr(err)
	}

	if len(respBody.Choices) == 0 || respBody.Choices[0].Message.Content == "" {
		return Result{Text: fallbackReply}, nil
	}
	return Result{Text: respBody.Choices[0].Message.Content}, nil
}

// chatErrorMessage extracts error.message from an API error body, falling
// back to the raw body text.
func chatErrorMessage(body []byte) string {
	var errBody struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error.Message != "" {
		return errBody.Error.Message
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return "Unknown error"
}
