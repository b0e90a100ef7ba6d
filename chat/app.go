package chat

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumen-ai/lumen/dispatch"
	"github.com/lumen-ai/lumen/history"
	"github.com/lumen-ai/lumen/registry"
	"github.com/lumen-ai/lumen/store"
)

const (
	slotSessions   = "sessions"
	slotAssistants = "assistants"
)

// Dispatcher produces one completion for a resolved model. Satisfied by
// *dispatch.Service; tests substitute fakes.
type Dispatcher interface {
	Complete(ctx context.Context, model registry.Model, req dispatch.Request) (dispatch.Result, error)
}

// Archiver mirrors sessions into the searchable archive. Satisfied by
// *history.Archive; may be nil when the archive is unavailable.
type Archiver interface {
	RecordSession(s history.Session) error
	DeleteSession(id string) error
}

// App owns the session list and the assistants. Every mutation goes through
// a named operation, and every operation ends with a save; save errors are
// logged, never returned, so a full disk cannot break a conversation.
//
// App is safe for concurrent use. One mutex covers every operation, held for
// the whole of a turn: the TUI runs SendMessage on a worker goroutine while
// the event loop keeps reading, and both must see a consistent session list.
type App struct {
	dispatcher Dispatcher
	store      *store.Store
	archive    Archiver

	mu         sync.Mutex
	sessions   []*Session
	assistants []*Assistant

	now   func() time.Time
	newID func() string
}

// NewApp loads state from the store and guarantees at least one session
// exists. A nil store keeps all state in memory (used by tests and one-shot
// commands that must not touch the user's data).
func NewApp(d Dispatcher, st *store.Store, arc Archiver) *App {
	a := &App{
		dispatcher: d,
		store:      st,
		archive:    arc,
		now:        time.Now,
		newID:      uuid.NewString,
	}

	if st != nil {
		if err := st.Load(slotSessions, &a.sessions); err != nil {
			log.Printf("warning: loading sessions: %v", err)
		}
		if err := st.Load(slotAssistants, &a.assistants); err != nil {
			log.Printf("warning: loading assistants: %v", err)
		}
	}
	sort.SliceStable(a.sessions, func(i, j int) bool {
		return a.sessions[i].UpdatedAt.After(a.sessions[j].UpdatedAt)
	})
	for _, s := range a.sessions {
		s.Turn = TurnIdle
	}

	if len(a.sessions) == 0 {
		a.seedSession(welcomeText)
	}
	return a
}

// Sessions returns the session list, most recently active first.
func (a *App) Sessions() []*Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Session, len(a.sessions))
	copy(out, a.sessions)
	return out
}

// Session looks a session up by id.
func (a *App) Session(id string) (*Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session(id)
}

func (a *App) session(id string) (*Session, bool) {
	for _, s := range a.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Assistants returns the saved assistants, newest first.
func (a *App) Assistants() []*Assistant {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Assistant, len(a.assistants))
	copy(out, a.assistants)
	return out
}

// Assistant looks an assistant up by id.
func (a *App) Assistant(id string) (*Assistant, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.assistant(id)
}

func (a *App) assistant(id string) (*Assistant, bool) {
	for _, as := range a.assistants {
		if as.ID == id {
			return as, true
		}
	}
	return nil, false
}

// NewSession creates a fresh session at the front of the list.
func (a *App) NewSession() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.seedSession(welcomeText)
	a.save()
	return s
}

// DeleteSession removes a session. Deleting the last session seeds a fresh
// one: the list is never empty.
func (a *App) DeleteSession(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.sessions[:0]
	for _, s := range a.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	a.sessions = kept

	if len(a.sessions) == 0 {
		a.seedSession("Welcome back!")
	}
	if a.archive != nil {
		if err := a.archive.DeleteSession(id); err != nil {
			log.Printf("warning: archive delete: %v", err)
		}
	}
	a.save()
}

// SetModel changes a session's model selection. A manual change clears any
// previous auto-routing pin by definition, since it replaces the reference.
func (a *App) SetModel(sessionID string, ref ModelRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.session(sessionID)
	if !ok {
		return fmt.Errorf("unknown session %q", sessionID)
	}
	s.Model = ref
	a.save()
	return nil
}

// SaveAssistant creates or updates an assistant. A draft without an id
// creates a new assistant at the front of the list.
func (a *App) SaveAssistant(draft Assistant) (*Assistant, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveAssistant(draft)
}

func (a *App) saveAssistant(draft Assistant) (*Assistant, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, fmt.Errorf("assistant name is required")
	}
	if draft.BaseModelID == "" {
		draft.BaseModelID = "auto"
	}

	if draft.ID != "" {
		existing, ok := a.assistant(draft.ID)
		if !ok {
			return nil, fmt.Errorf("unknown assistant %q", draft.ID)
		}
		existing.Name = draft.Name
		existing.Description = draft.Description
		existing.SystemPrompt = draft.SystemPrompt
		existing.BaseModelID = draft.BaseModelID
		a.save()
		return existing, nil
	}

	draft.ID = a.newID()
	draft.CreatedAt = a.now()
	saved := draft
	a.assistants = append([]*Assistant{&saved}, a.assistants...)
	a.save()
	return &saved, nil
}

// AddPrebuilt clones a gallery template into a new assistant.
func (a *App) AddPrebuilt(name string) (*Assistant, error) {
	tpl, ok := registry.FindPrebuilt(name)
	if !ok {
		return nil, fmt.Errorf("unknown prebuilt assistant %q", name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveAssistant(Assistant{
		Name:         tpl.Name,
		Description:  tpl.Description,
		SystemPrompt: tpl.SystemPrompt,
		BaseModelID:  tpl.BaseModelID,
	})
}

// DeleteAssistant removes an assistant. Sessions still pointing at it fall
// back to auto so no dangling reference survives.
func (a *App) DeleteAssistant(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.assistants[:0]
	for _, as := range a.assistants {
		if as.ID != id {
			kept = append(kept, as)
		}
	}
	a.assistants = kept

	for _, s := range a.sessions {
		if s.Model.Kind == RefAssistant && s.Model.ID == id {
			s.Model = Auto()
		}
	}
	a.save()
}

func (a *App) seedSession(greeting string) *Session {
	s := &Session{
		ID:    a.newID(),
		Title: "New Chat",
		Messages: []Message{{
			ID:        WelcomeMessageID,
			Role:      "assistant",
			Content:   greeting,
			Kind:      KindText,
			CreatedAt: a.now(),
		}},
		Model:     Auto(),
		UpdatedAt: a.now(),
	}
	a.sessions = append([]*Session{s}, a.sessions...)
	return s
}

// touch moves a session to the front of the list.
func (a *App) touch(s *Session) {
	s.UpdatedAt = a.now()
	for i, cur := range a.sessions {
		if cur == s {
			copy(a.sessions[1:i+1], a.sessions[:i])
			a.sessions[0] = s
			break
		}
	}
}

// save mirrors state into the store. Empty collections remove their slot
// instead of writing an empty document.
func (a *App) save() {
	if a.store == nil {
		return
	}
	if err := a.saveSlot(slotSessions, len(a.sessions) > 0, a.sessions); err != nil {
		log.Printf("warning: saving sessions: %v", err)
	}
	if err := a.saveSlot(slotAssistants, len(a.assistants) > 0, a.assistants); err != nil {
		log.Printf("warning: saving assistants: %v", err)
	}
}

func (a *App) saveSlot(slot string, nonEmpty bool, v interface{}) error {
	if !nonEmpty {
		return a.store.Remove(slot)
	}
	return a.store.Save(slot, v)
}

// record mirrors one session into the archive, skipping the welcome message.
func (a *App) record(s *Session) {
	if a.archive == nil {
		return
	}
	hs := history.Session{
		ID:        s.ID,
		Title:     s.Title,
		ModelRef:  s.Model.String(),
		CreatedAt: s.UpdatedAt,
	}
	for _, m := range s.Messages {
		if m.ID == WelcomeMessageID {
			continue
		}
		hs.Messages = append(hs.Messages, history.Message{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			Kind:      string(m.Kind),
			CreatedAt: m.CreatedAt,
		})
	}
	if err := a.archive.RecordSession(hs); err != nil {
		log.Printf("warning: archive record: %v", err)
	}
}
