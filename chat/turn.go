package chat

import (
	"context"
	"encoding/base64"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumen-ai/lumen/dispatch"
	"github.com/lumen-ai/lumen/registry"
)

const imageGenInstruction = `When a user provides an image and asks to generate a new image based on it (e.g., "make this a cartoon," "put a hat on the person," "change the background"), your ONLY response must be a detailed prompt for a text-to-image model. This prompt MUST start with the prefix "IMAGE_PROMPT::". Do not add any other text or explanation. For any other request, like asking a question about the image, respond normally.`

// Send is the input tuple for one turn.
type Send struct {
	Text           string
	ImageMode      bool   // generate an image from Text instead of chatting
	AspectRatio    string // images only; defaults to 1:1
	ImageModel     string // images only; defaults to flux
	WebSearch      bool
	AttachmentPath string // file to attach; read and encoded before dispatch
}

// SendMessage runs one full turn: append the user message, resolve the
// model, dispatch, and append exactly one assistant message. Provider and
// read failures become assistant-role error messages rather than returned
// errors; the returned message is the appended assistant message, or nil
// when the send was silently rejected.
//
// The lock is held for the whole turn, dispatch included, so the session
// cannot be deleted or mutated out from under an in-flight completion.
func (a *App) SendMessage(ctx context.Context, sessionID string, send Send) *Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.session(sessionID)
	if !ok {
		return nil
	}
	if strings.TrimSpace(send.Text) == "" && send.AttachmentPath == "" {
		return nil
	}
	if s.Turn == TurnDispatching {
		return nil
	}

	if send.AspectRatio == "" {
		send.AspectRatio = registry.DefaultAspectRatioID
	}
	if send.ImageModel == "" {
		send.ImageModel = registry.DefaultImageModelID
	}

	var attachment *dispatch.Attachment
	if send.AttachmentPath != "" {
		att, err := encodeAttachment(send.AttachmentPath)
		if err != nil {
			return a.finishTurn(s, TurnErrored, Message{
				Role: "assistant", Content: "Error reading attached file.", Kind: KindText,
			})
		}
		attachment = att
	}

	isNewChat := len(s.Messages) <= 1 && len(s.Messages) > 0 && s.Messages[0].ID == WelcomeMessageID
	s.Messages = withoutWelcome(s.Messages)

	s.Messages = append(s.Messages, Message{
		ID:         a.newID(),
		Role:       "user",
		Content:    send.Text,
		Kind:       KindText,
		Attachment: attachment,
		CreatedAt:  a.now(),
	})
	if isNewChat {
		s.Title = deriveTitle(send.Text, attachment)
	}
	s.Turn = TurnDispatching
	a.touch(s)
	a.save()

	history := dispatchHistory(s.Messages[:len(s.Messages)-1])

	if send.ImageMode && attachment == nil {
		url := dispatch.BuildImageURL(send.Text, send.AspectRatio, send.ImageModel)
		return a.finishTurn(s, TurnCompleted, Message{
			Role: "assistant", Content: url, Kind: KindImage, AspectRatio: send.AspectRatio,
		})
	}

	model, systemPrompt := a.resolveModel(ctx, s, send.Text, attachment)

	if attachment != nil && model.Provider != registry.ProviderGemini {
		a.appendInfo(s, "File attachments are only supported by Gemini models. Switching to Gemini for this response.")
		if forced, ok := registry.FindModel(registry.MultimodalModelID); ok {
			model = forced
		}
	}

	if model.Provider == registry.ProviderGemini && attachment != nil && strings.HasPrefix(attachment.Mime, "image/") {
		if systemPrompt != "" {
			systemPrompt = imageGenInstruction + "\n\nYour primary persona instruction: " + systemPrompt
		} else {
			systemPrompt = imageGenInstruction
		}
	}

	res, err := a.dispatcher.Complete(ctx, model, dispatch.Request{
		History:      history,
		Input:        send.Text,
		SystemPrompt: systemPrompt,
		WebSearch:    send.WebSearch,
		Attachment:   attachment,
	})
	if err != nil {
		return a.finishTurn(s, TurnErrored, Message{
			Role: "assistant", Content: err.Error(), Kind: KindText,
		})
	}

	if rest, ok := strings.CutPrefix(res.Text, dispatch.ImagePromptPrefix); ok {
		url := dispatch.BuildImageURL(strings.TrimSpace(rest), send.AspectRatio, send.ImageModel)
		return a.finishTurn(s, TurnCompleted, Message{
			Role: "assistant", Content: url, Kind: KindImage, AspectRatio: send.AspectRatio,
		})
	}
	return a.finishTurn(s, TurnCompleted, Message{
		Role: "assistant", Content: res.Text, Kind: KindText,
	})
}

// resolveModel turns the session's model reference into a concrete registry
// model. Assistant references substitute their base model and carry the
// system prompt; "auto" routes (or jumps straight to the multimodal model
// when an attachment is present) and pins the choice into the session.
func (a *App) resolveModel(ctx context.Context, s *Session, input string, attachment *dispatch.Attachment) (registry.Model, string) {
	ref := s.Model
	var systemPrompt string

	if ref.Kind == RefAssistant {
		if as, ok := a.assistant(ref.ID); ok {
			systemPrompt = as.SystemPrompt
			if as.BaseModelID == "auto" {
				ref = Auto()
			} else {
				ref = Literal(as.BaseModelID)
			}
		} else {
			ref = Auto()
		}
	}

	if ref.IsAuto() {
		var id string
		if attachment != nil {
			id = registry.MultimodalModelID
		} else {
			id = registry.FirstInCategory(a.Classify(ctx, input))
		}
		ref = Literal(id)
		s.Model = ref
		a.save()

		name := "a suitable model"
		if m, ok := registry.FindModel(id); ok {
			name = m.Name
		}
		a.appendInfo(s, "> Auto-selected **"+name+"**. Model locked for this session.")
	}

	model, ok := registry.FindModel(ref.ID)
	if !ok {
		log.Printf("warning: unknown model %q, falling back to %s", ref.ID, registry.MultimodalModelID)
		model, _ = registry.FindModel(registry.MultimodalModelID)
	}
	return model, systemPrompt
}

// finishTurn appends the turn's single assistant message and settles the
// session state.
func (a *App) finishTurn(s *Session, state TurnState, m Message) *Message {
	m.ID = a.newID()
	m.CreatedAt = a.now()
	s.Messages = append(s.Messages, m)
	s.Turn = state
	a.save()
	a.record(s)
	return &s.Messages[len(s.Messages)-1]
}

// appendInfo adds an informational assistant message mid-turn.
func (a *App) appendInfo(s *Session, text string) {
	s.Messages = append(s.Messages, Message{
		ID:        a.newID(),
		Role:      "assistant",
		Content:   text,
		Kind:      KindText,
		CreatedAt: a.now(),
	})
	a.save()
}

func withoutWelcome(msgs []Message) []Message {
	kept := msgs[:0]
	for _, m := range msgs {
		if m.ID != WelcomeMessageID {
			kept = append(kept, m)
		}
	}
	return kept
}

// dispatchHistory converts stored messages to the dispatcher's shape.
func dispatchHistory(msgs []Message) []dispatch.Message {
	out := make([]dispatch.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, dispatch.Message{
			Role:       m.Role,
			Content:    m.Content,
			IsImage:    m.Kind == KindImage,
			Attachment: m.Attachment,
		})
	}
	return out
}

// deriveTitle names a fresh session after its first input, truncated.
func deriveTitle(input string, attachment *dispatch.Attachment) string {
	src := input
	if src == "" && attachment != nil {
		src = attachment.Name
	}
	if r := []rune(src); len(r) > 40 {
		src = string(r[:40])
	}
	return src + "..."
}

// encodeAttachment reads a file and encodes it as a base64 data URL.
func encodeAttachment(path string) (*dispatch.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &dispatch.Attachment{
		Name: filepath.Base(path),
		Mime: mimeType,
		Data: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
