// Package chat owns the application state: the session list, the custom
// assistants, and the per-turn state machine that drives a message through
// routing, dispatch, and persistence. All mutation goes through named
// operations on App; nothing else writes the collections.
package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumen-ai/lumen/dispatch"
)

// WelcomeMessageID marks the synthetic greeting seeded into new sessions.
// It is stripped from history before any provider call.
const WelcomeMessageID = "initial-message"

const welcomeText = "Welcome to Lumen AI Chat! You can now attach files with Gemini. Select a model and send a message to begin."

// Kind distinguishes text messages from generated images, whose content is
// the image URL.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Message is one turn in a session. Never mutated after creation.
type Message struct {
	ID          string               `json:"id"`
	Role        string               `json:"role"` // "user" or "assistant"
	Content     string               `json:"content"`
	Kind        Kind                 `json:"type"`
	AspectRatio string               `json:"aspectRatio,omitempty"` // images only
	Attachment  *dispatch.Attachment `json:"attachment,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// TurnState tracks the progress of a session's in-flight turn. It is
// runtime-only state and never persisted.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnDispatching
	TurnCompleted
	TurnErrored
)

func (t TurnState) String() string {
	switch t {
	case TurnDispatching:
		return "dispatching"
	case TurnCompleted:
		return "completed"
	case TurnErrored:
		return "errored"
	default:
		return "idle"
	}
}

// RefKind tags the three meanings a session's model selection can have.
type RefKind string

const (
	RefAuto      RefKind = "auto"
	RefLiteral   RefKind = "literal"
	RefAssistant RefKind = "assistant"
)

// ModelRef is a session's model selection: route automatically, a concrete
// registry model, or a saved assistant.
type ModelRef struct {
	Kind RefKind
	ID   string // model id or assistant id; empty for auto
}

func Auto() ModelRef { return ModelRef{Kind: RefAuto} }
func Literal(modelID string) ModelRef {
	return ModelRef{Kind: RefLiteral, ID: modelID}
}
func AssistantRef(assistantID string) ModelRef {
	return ModelRef{Kind: RefAssistant, ID: assistantID}
}

func (r ModelRef) IsAuto() bool { return r.Kind == RefAuto }

func (r ModelRef) String() string {
	if r.Kind == RefAuto {
		return "auto"
	}
	return r.ID
}

type modelRefJSON struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id,omitempty"`
}

func (r ModelRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelRefJSON{Kind: r.Kind, ID: r.ID})
}

func (r *ModelRef) UnmarshalJSON(data []byte) error {
	var v modelRefJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case RefAuto, RefLiteral, RefAssistant:
		r.Kind, r.ID = v.Kind, v.ID
		return nil
	default:
		return fmt.Errorf("unknown model ref kind %q", v.Kind)
	}
}

// Session is one conversation. The Messages slice is append-only during
// normal operation; Turn is the in-flight state and is not persisted.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Model     ModelRef  `json:"model"`
	UpdatedAt time.Time `json:"updatedAt"`

	Turn TurnState `json:"-"`
}

// Assistant is a saved persona: a system prompt bound to a base model.
// BaseModelID may be a concrete model id or the "auto" sentinel.
type Assistant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	SystemPrompt string    `json:"systemPrompt"`
	BaseModelID  string    `json:"baseModelId"`
	CreatedAt    time.Time `json:"createdAt"`
}
