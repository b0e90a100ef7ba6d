package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lumen-ai/lumen/registry"
)

// textgenTransport speaks the plain-text generation endpoint. It has no
// notion of structured history or system roles, so the whole conversation is
// flattened into one role-labelled transcript carried in the request path.
type textgenTransport struct{}

func (textgenTransport) complete(ctx context.Context, s *Service, model registry.Model, req Request) (Result, error) {
	transcript := buildTranscript(req)

	u := s.textgenBase() + "/" + url.PathEscape(transcript) + "?model=" + url.QueryEscape(model.ID)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return Result{}, wrapNetErr(err)
	}
	resp, err := s.httpClient().Do(httpReq)
	if err != nil {
		return Result{}, wrapNetErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, wrapNetErr(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &CallError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return Result{Text: string(body)}, nil
}

// buildTranscript flattens system prompt, history, and the new message into
// "role: content" entries separated by blank lines. Image messages are
// dropped: the endpoint cannot see them and a placeholder would only confuse
// the one-shot prompt.
func buildTranscript(req Request) string {
	var lines []string
	if req.SystemPrompt != "" {
		lines = append(lines, "system: "+req.SystemPrompt)
	}
	for _, m := range req.History {
		if m.IsImage {
			continue
		}
		lines = append(lines, m.Role+": "+m.Content)
	}
	lines = append(lines, "user: "+req.Input)
	return strings.Join(lines, "\n\n")
}
