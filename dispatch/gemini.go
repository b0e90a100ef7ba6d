package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lumen-ai/lumen/registry"
)

// geminiTransport speaks the Gemini generateContent API. Unlike the chat
// transports it returns the raw structured response as well: the caller must
// inspect the reply for an embedded image-generation directive.
type geminiTransport struct{}

type geminiBlob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Text is a pointer so an explicit empty text part survives marshalling:
// the API rejects turns with zero parts.
type geminiPart struct {
	Text       *string     `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
}

// GeminiResponse is the structured multimodal reply.
type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Text concatenates the text parts of the first candidate.
func (r *GeminiResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func (geminiTransport) complete(ctx context.Context, s *Service, model registry.Model, req Request) (Result, error) {
	apiKey := s.key(model.Provider)
	if apiKey == "" {
		return Result{}, &MissingKeyError{Provider: model.Provider}
	}

	contents := make([]geminiContent, 0, len(req.History)+1)
	for _, m := range req.History {
		if m.IsImage {
			continue
		}
		contents = append(contents, historyTurn(m))
	}

	var userParts []geminiPart
	if req.Attachment != nil {
		if blob, ok := attachmentBlob(req.Attachment); ok {
			userParts = append(userParts, geminiPart{InlineData: blob})
		}
	}
	if strings.TrimSpace(req.Input) != "" {
		userParts = append(userParts, textPart(req.Input))
	}
	if len(userParts) == 0 {
		userParts = []geminiPart{textPart("")}
	}
	contents = append(contents, geminiContent{Role: "user", Parts: userParts})

	payload := geminiRequest{Contents: contents}
	if req.SystemPrompt != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{textPart(req.SystemPrompt)}}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return Result{}, wrapNetErr(err)
	}

	u := s.geminiBase() + "/v1beta/models/" + url.PathEscape(model.ID) + ":generateContent?key=" + url.QueryEscape(apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewBuffer(jsonData))
	if err != nil {
		return Result{}, wrapNetErr(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(httpReq)
	if err != nil {
		return Result{}, wrapNetErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, &CallError{Status: resp.StatusCode, Message: chatErrorMessage(body)}
	}

	var gr GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Result{}, wrapNetErr(err)
	}
	return Result{Text: gr.Text(), Gemini: &gr}, nil
}

// historyTurn converts a prior message to an API turn. The assistant role is
// "model" on the wire, and a turn is never emitted with zero parts.
func historyTurn(m Message) geminiContent {
	var parts []geminiPart
	if m.Attachment != nil {
		if blob, ok := attachmentBlob(m.Attachment); ok {
			parts = append(parts, geminiPart{InlineData: blob})
		}
	}
	if m.Content != "" {
		parts = append(parts, textPart(m.Content))
	}
	if len(parts) == 0 {
		parts = []geminiPart{textPart("")}
	}

	role := "user"
	if m.Role == "assistant" {
		role = "model"
	}
	return geminiContent{Role: role, Parts: parts}
}

func textPart(s string) geminiPart {
	return geminiPart{Text: &s}
}

// attachmentBlob strips the data-URL header off an attachment payload.
func attachmentBlob(a *Attachment) (*geminiBlob, bool) {
	_, b64, ok := strings.Cut(a.Data, ",")
	if !ok || b64 == "" {
		return nil, false
	}
	return &geminiBlob{MimeType: a.Mime, Data: b64}, true
}
