package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumen-ai/lumen/registry"
)

func chatOK(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []interface{}{
				map[string]interface{}{
					"message": map[string]interface{}{"content": content},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func mustModel(t *testing.T, id string) registry.Model {
	t.Helper()
	m, ok := registry.FindModel(id)
	if !ok {
		t.Fatalf("model %q not in registry", id)
	}
	return m
}

func TestCompleteChat(t *testing.T) {
	t.Run("request payload", func(t *testing.T) {
		var got chatRequest
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&got)
			chatOK("hello back")(w, r)
		}))
		defer server.Close()

		model := mustModel(t, "llama3-70b-8192")
		s := New(map[string]string{model.Provider: "gsk-test"})
		s.ChatURLs = map[string]string{model.Provider: server.URL}

		res, err := s.Complete(context.Background(), model, Request{
			History: []Message{
				{Role: "user", Content: "first"},
				{Role: "assistant", Content: "second"},
			},
			Input:        "third",
			SystemPrompt: "be terse",
		})
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if res.Text != "hello back" {
			t.Errorf("Text = %q", res.Text)
		}
		if auth != "Bearer gsk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if got.Model != "llama3-70b-8192" || got.MaxTokens != 4096 || got.Stream {
			t.Errorf("request = %+v", got)
		}
		want := []chatMessage{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "second"},
			{Role: "user", Content: "third"},
		}
		if len(got.Messages) != len(want) {
			t.Fatalf("got %d messages, want %d", len(got.Messages), len(want))
		}
		for i := range want {
			if got.Messages[i] != want[i] {
				t.Errorf("message %d = %+v, want %+v", i, got.Messages[i], want[i])
			}
		}
	})

	t.Run("image history becomes placeholder", func(t *testing.T) {
		var got chatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			chatOK("ok")(w, r)
		}))
		defer server.Close()

		model := mustModel(t, "deepseek-chat")
		s := New(map[string]string{model.Provider: "sk-test"})
		s.ChatURLs = map[string]string{model.Provider: server.URL}

		_, err := s.Complete(context.Background(), model, Request{
			History: []Message{{Role: "assistant", Content: "https://example.com/img.png", IsImage: true}},
			Input:   "what was that",
		})
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if got.Messages[0].Content != ImagePlaceholder {
			t.Errorf("image history sent as %q", got.Messages[0].Content)
		}
	})

	t.Run("web search rewrites input", func(t *testing.T) {
		var got chatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			chatOK("ok")(w, r)
		}))
		defer server.Close()

		model := mustModel(t, "llama3-70b-8192")
		s := New(map[string]string{model.Provider: "gsk-test"})
		s.ChatURLs = map[string]string{model.Provider: server.URL}

		_, err := s.Complete(context.Background(), model, Request{Input: "latest go release", WebSearch: true})
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		sent := got.Messages[len(got.Messages)-1].Content
		if !strings.Contains(sent, "under a heading 'Sources:'") {
			t.Errorf("web search instruction missing from %q", sent)
		}
		if !strings.HasSuffix(sent, `User Query: "latest go release"`) {
			t.Errorf("query not appended: %q", sent)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		model := mustModel(t, "llama3-70b-8192")
		s := New(nil)

		_, err := s.Complete(context.Background(), model, Request{Input: "hi"})
		var mk *MissingKeyError
		if !errors.As(err, &mk) {
			t.Fatalf("err = %v, want MissingKeyError", err)
		}
		if mk.Provider != model.Provider {
			t.Errorf("Provider = %q", mk.Provider)
		}
	})

	t.Run("API error 500", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
		}))
		defer server.Close()

		model := mustModel(t, "llama3-70b-8192")
		s := New(map[string]string{model.Provider: "gsk-test"})
		s.ChatURLs = map[string]string{model.Provider: server.URL}

		_, err := s.Complete(context.Background(), model, Request{Input: "hi"})
		var ce *CallError
		if !errors.As(err, &ce) {
			t.Fatalf("err = %v, want CallError", err)
		}
		if ce.Status != 500 || ce.Message != "quota exceeded" {
			t.Errorf("CallError = %+v", ce)
		}
		if !strings.Contains(ce.Error(), "API error (status 500)") {
			t.Errorf("Error() = %q", ce.Error())
		}
	})

	t.Run("empty choices fall back", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
		}))
		defer server.Close()

		model := mustModel(t, "llama3-70b-8192")
		s := New(map[string]string{model.Provider: "gsk-test"})
		s.ChatURLs = map[string]string{model.Provider: server.URL}

		res, err := s.Complete(context.Background(), model, Request{Input: "hi"})
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if res.Text != fallbackReply {
			t.Errorf("Text = %q, want fallback", res.Text)
		}
	})

	t.Run("openrouter headers", func(t *testing.T) {
		var referer, title string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			referer = r.Header.Get("HTTP-Referer")
			title = r.Header.Get("X-Title")
			chatOK("ok")(w, r)
		}))
		defer server.Close()

		model := mustModel(t, "deepseek/deepseek-chat-v3-0324:free")
		s := New(map[string]string{model.Provider: "sk-or-test"})
		s.ChatURLs = map[string]string{model.Provider: server.URL}

		if _, err := s.Complete(context.Background(), model, Request{Input: "hi"}); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if referer == "" || title != "Lumen AI" {
			t.Errorf("attribution headers = %q / %q", referer, title)
		}
	})
}

func TestCompleteUnknownProvider(t *testing.T) {
	s := New(nil)
	_, err := s.Complete(context.Background(), registry.Model{ID: "x", Provider: "nope"}, Request{})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
