// Package dispatch produces single completions from the hosted providers.
// One Service fronts three wire formats: plain-text GET generation,
// OpenAI-compatible chat JSON, and the Gemini multimodal API. The transport
// is selected by the provider's API-type tag, never by ad-hoc string checks
// at call sites.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lumen-ai/lumen/registry"
)

// ImagePlaceholder substitutes image messages in history sent to text-only
// providers.
const ImagePlaceholder = "[An image was generated here in response to the user's prompt.]"

// ImagePromptPrefix marks a multimodal reply that is an image-generation
// directive rather than an answer.
const ImagePromptPrefix = "IMAGE_PROMPT::"

// fallbackReply is returned when a chat response parses but carries no content.
const fallbackReply = "Sorry, I couldn't get a response."

const (
	defaultTextgenBase = "https://text.pollinations.ai"
	defaultGeminiBase  = "https://generativelanguage.googleapis.com"
)

// Attachment is a user file encoded for a multimodal request.
type Attachment struct {
	Name string `json:"name"`
	Mime string `json:"mime"`
	Data string `json:"data"` // base64 data URL: "data:<mime>;base64,<payload>"
}

// Message is one prior turn as the dispatcher sees it. History handed to
// Complete must already be stripped of the synthetic welcome message.
type Message struct {
	Role       string // "user" or "assistant"
	Content    string
	IsImage    bool
	Attachment *Attachment
}

// Request carries everything a single completion needs besides the model.
type Request struct {
	History      []Message
	Input        string
	SystemPrompt string
	WebSearch    bool
	Attachment   *Attachment
}

// Result is a normalized completion. Gemini is non-nil only for the
// multimodal transport, whose raw response callers may need to inspect.
type Result struct {
	Text   string
	Gemini *GeminiResponse
}

// Service issues provider calls. The base URLs exist so tests can point the
// transports at local servers; zero values mean production endpoints.
type Service struct {
	Client      *http.Client
	Keys        map[string]string // provider id -> bearer credential / API key
	TextgenBase string
	GeminiBase  string
	ChatURLs    map[string]string // provider id -> chat completions URL override
}

// New returns a Service with the given per-provider credentials.
func New(keys map[string]string) *Service {
	return &Service{
		Client: &http.Client{Timeout: 120 * time.Second},
		Keys:   keys,
	}
}

type transport interface {
	complete(ctx context.Context, s *Service, model registry.Model, req Request) (Result, error)
}

// Complete produces one completion for a resolved model. The model must be a
// concrete registry entry: "auto" and assistant references are resolved
// upstream by the session state machine.
func (s *Service) Complete(ctx context.Context, model registry.Model, req Request) (Result, error) {
	provider, ok := registry.FindProvider(model.Provider)
	if !ok {
		return Result{}, &CallError{Message: fmt.Sprintf("unknown provider %q", model.Provider)}
	}

	var t transport
	switch {
	case provider.APIType == registry.APIGemini:
		t = geminiTransport{}
	case model.Subtype == registry.SubtypeTextgen:
		t = textgenTransport{}
	default:
		t = openaiTransport{url: s.chatURL(provider)}
	}
	return t.complete(ctx, s, model, req)
}

func (s *Service) chatURL(p registry.Provider) string {
	if u, ok := s.ChatURLs[p.ID]; ok {
		return u
	}
	return p.APIUrl
}

func (s *Service) textgenBase() string {
	if s.TextgenBase != "" {
		return s.TextgenBase
	}
	return defaultTextgenBase
}

func (s *Service) geminiBase() string {
	if s.GeminiBase != "" {
		return s.GeminiBase
	}
	return defaultGeminiBase
}

func (s *Service) httpClient() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *Service) key(provider string) string {
	return s.Keys[provider]
}

// Fetch retrieves a binary payload (generated image or speech audio) from url.
func (s *Service) Fetch(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, wrapNetErr(err)
	}
	resp, err := s.httpClient().Do(httpReq)
	if err != nil {
		return nil, wrapNetErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapNetErr(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CallError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// webSearchRewrite wraps the user input with the search-and-cite instruction.
func webSearchRewrite(input string) string {
	return "Please perform a web search to find the most current and relevant information to answer the following user query. " +
		"After your search, synthesize the findings to provide a comprehensive answer. " +
		"At the end of your response, you MUST list all the source URLs you used under a heading 'Sources:'.\n\n" +
		"User Query: \"" + input + "\""
}
