package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func geminiOK(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{
					"content": map[string]interface{}{
						"parts": []interface{}{map[string]interface{}{"text": text}},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestGeminiComplete(t *testing.T) {
	t.Run("request shape", func(t *testing.T) {
		var got geminiRequest
		var key, path string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			key = r.URL.Query().Get("key")
			json.NewDecoder(r.Body).Decode(&got)
			geminiOK("a reply")(w, r)
		}))
		defer server.Close()

		model := mustModel(t, "gemini-2.5-flash")
		s := New(map[string]string{model.Provider: "AIza-test"})
		s.GeminiBase = server.URL

		res, err := s.Complete(context.Background(), model, Request{
			History: []Message{
				{Role: "user", Content: "hello"},
				{Role: "assistant", Content: "hi"},
			},
			Input:        "describe this",
			SystemPrompt: "You are Lumen.",
			Attachment:   &Attachment{Name: "a.png", Mime: "image/png", Data: "data:image/png;base64,aGVsbG8="},
		})
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if res.Text != "a reply" {
			t.Errorf("Text = %q", res.Text)
		}
		if res.Gemini == nil {
			t.Error("raw response not surfaced")
		}
		if key != "AIza-test" {
			t.Errorf("key param = %q", key)
		}
		if path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %q", path)
		}
		if got.SystemInstruction == nil || *got.SystemInstruction.Parts[0].Text != "You are Lumen." {
			t.Errorf("system instruction = %+v", got.SystemInstruction)
		}
		if len(got.Contents) != 3 {
			t.Fatalf("got %d contents, want 3", len(got.Contents))
		}
		if got.Contents[1].Role != "model" {
			t.Errorf("assistant turn sent with role %q", got.Contents[1].Role)
		}
		last := got.Contents[2]
		if last.Role != "user" || len(last.Parts) != 2 {
			t.Fatalf("final turn = %+v", last)
		}
		if last.Parts[0].InlineData == nil || last.Parts[0].InlineData.Data != "aGVsbG8=" ||
			last.Parts[0].InlineData.MimeType != "image/png" {
			t.Errorf("inline data = %+v", last.Parts[0].InlineData)
		}
		if last.Parts[1].Text == nil || *last.Parts[1].Text != "describe this" {
			t.Errorf("text part = %+v", last.Parts[1])
		}
	})

	t.Run("empty turn keeps a text part", func(t *testing.T) {
		var raw map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&raw)
			geminiOK("ok")(w, r)
		}))
		defer server.Close()

		model := mustModel(t, "gemini-2.5-flash")
		s := New(map[string]string{model.Provider: "AIza-test"})
		s.GeminiBase = server.URL

		if _, err := s.Complete(context.Background(), model, Request{Input: "  "}); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		contents := raw["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		if len(parts) != 1 {
			t.Fatalf("got %d parts, want 1", len(parts))
		}
		if _, ok := parts[0].(map[string]interface{})["text"]; !ok {
			t.Errorf("empty turn marshalled without a text field: %v", parts[0])
		}
	})

	t.Run("missing key", func(t *testing.T) {
		model := mustModel(t, "gemini-2.5-flash")
		s := New(nil)

		_, err := s.Complete(context.Background(), model, Request{Input: "hi"})
		var mk *MissingKeyError
		if !errors.As(err, &mk) {
			t.Fatalf("err = %v, want MissingKeyError", err)
		}
	})
}

func TestGeminiResponseText(t *testing.T) {
	var nilResp *GeminiResponse
	if nilResp.Text() != "" {
		t.Error("nil response should read as empty")
	}

	var r GeminiResponse
	data := `{"candidates":[{"content":{"parts":[{"text":"IMAGE_PROMPT::"},{"text":"a red fox"}]}}]}`
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatal(err)
	}
	if r.Text() != "IMAGE_PROMPT::a red fox" {
		t.Errorf("Text() = %q", r.Text())
	}
}
