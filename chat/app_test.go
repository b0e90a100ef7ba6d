package chat

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lumen-ai/lumen/dispatch"
	"github.com/lumen-ai/lumen/registry"
	"github.com/lumen-ai/lumen/store"
)

type call struct {
	Model registry.Model
	Req   dispatch.Request
}

type fakeDispatcher struct {
	fn    func(model registry.Model, req dispatch.Request) (dispatch.Result, error)
	calls []call
}

func (f *fakeDispatcher) Complete(_ context.Context, model registry.Model, req dispatch.Request) (dispatch.Result, error) {
	f.calls = append(f.calls, call{Model: model, Req: req})
	if f.fn == nil {
		return dispatch.Result{Text: "ok"}, nil
	}
	return f.fn(model, req)
}

func newTestApp(t *testing.T, d Dispatcher) *App {
	t.Helper()
	if d == nil {
		d = &fakeDispatcher{}
	}
	return NewApp(d, nil, nil)
}

func TestSessionListNeverEmpty(t *testing.T) {
	app := newTestApp(t, nil)
	if len(app.Sessions()) != 1 {
		t.Fatalf("fresh app has %d sessions", len(app.Sessions()))
	}

	first := app.Sessions()[0]
	if len(first.Messages) != 1 || first.Messages[0].ID != WelcomeMessageID {
		t.Errorf("seeded session = %+v", first.Messages)
	}
	if !first.Model.IsAuto() {
		t.Errorf("seeded model = %+v", first.Model)
	}

	second := app.NewSession()
	if len(app.Sessions()) != 2 || app.Sessions()[0] != second {
		t.Errorf("new session not at front")
	}

	app.DeleteSession(second.ID)
	app.DeleteSession(first.ID)
	if len(app.Sessions()) != 1 {
		t.Fatalf("after deleting everything, %d sessions", len(app.Sessions()))
	}
	if app.Sessions()[0].ID == first.ID || app.Sessions()[0].ID == second.ID {
		t.Error("last deletion should synthesize a fresh session")
	}
}

func TestSaveAssistant(t *testing.T) {
	app := newTestApp(t, nil)

	created, err := app.SaveAssistant(Assistant{Name: "Reviewer", SystemPrompt: "Review code.", BaseModelID: "deepseek-coder"})
	if err != nil {
		t.Fatalf("SaveAssistant: %v", err)
	}
	if created.ID == "" {
		t.Error("created assistant has no id")
	}

	created2, err := app.SaveAssistant(Assistant{Name: "Reviewer", SystemPrompt: "Review code."})
	if err != nil {
		t.Fatal(err)
	}
	if created2.ID == created.ID {
		t.Error("two creations share an id")
	}
	if created2.BaseModelID != "auto" {
		t.Errorf("default base model = %q, want auto", created2.BaseModelID)
	}

	updated, err := app.SaveAssistant(Assistant{ID: created.ID, Name: "Strict Reviewer", SystemPrompt: "Be strict.", BaseModelID: "deepseek-coder"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Strict Reviewer" {
		t.Errorf("update result = %+v", updated)
	}
	if len(app.Assistants()) != 2 {
		t.Errorf("update created a duplicate: %d assistants", len(app.Assistants()))
	}

	if _, err := app.SaveAssistant(Assistant{Name: "  "}); err == nil {
		t.Error("blank name accepted")
	}
	if _, err := app.SaveAssistant(Assistant{ID: "ghost", Name: "x"}); err == nil {
		t.Error("update of unknown id accepted")
	}
}

func TestAddPrebuiltUniqueIDs(t *testing.T) {
	app := newTestApp(t, nil)

	a1, err := app.AddPrebuilt("Haiku Poet")
	if err != nil {
		t.Fatalf("AddPrebuilt: %v", err)
	}
	a2, err := app.AddPrebuilt("Haiku Poet")
	if err != nil {
		t.Fatal(err)
	}
	if a1.ID == a2.ID {
		t.Error("same-template clones share an id")
	}
	if a1.SystemPrompt == "" {
		t.Error("template system prompt not copied")
	}

	if _, err := app.AddPrebuilt("No Such Template"); err == nil {
		t.Error("unknown template accepted")
	}
}

func TestDeleteAssistantResetsSessions(t *testing.T) {
	app := newTestApp(t, nil)
	as, err := app.SaveAssistant(Assistant{Name: "Poet", SystemPrompt: "Rhyme.", BaseModelID: "deepseek-chat"})
	if err != nil {
		t.Fatal(err)
	}

	s := app.Sessions()[0]
	if err := app.SetModel(s.ID, AssistantRef(as.ID)); err != nil {
		t.Fatal(err)
	}

	app.DeleteAssistant(as.ID)
	if len(app.Assistants()) != 0 {
		t.Error("assistant survived deletion")
	}
	if !s.Model.IsAuto() {
		t.Errorf("session model after delete = %+v, want auto", s.Model)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lumen")
	st, err := store.Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	fd := &fakeDispatcher{}
	app := NewApp(fd, st, nil)
	s := app.Sessions()[0]
	if err := app.SetModel(s.ID, Literal("mistral")); err != nil {
		t.Fatal(err)
	}
	if m := app.SendMessage(context.Background(), s.ID, Send{Text: "hello"}); m == nil {
		t.Fatal("send rejected")
	}
	if _, err := app.SaveAssistant(Assistant{Name: "Poet", SystemPrompt: "Rhyme."}); err != nil {
		t.Fatal(err)
	}

	reloaded := NewApp(fd, st, nil)
	if len(reloaded.Sessions()) != 1 {
		t.Fatalf("reloaded %d sessions", len(reloaded.Sessions()))
	}
	got := reloaded.Sessions()[0]
	if got.ID != s.ID || got.Model != Literal("mistral") {
		t.Errorf("reloaded session = %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Errorf("reloaded %d messages, want 2", len(got.Messages))
	}
	if got.Turn != TurnIdle {
		t.Errorf("turn state persisted: %v", got.Turn)
	}
	if len(reloaded.Assistants()) != 1 || reloaded.Assistants()[0].Name != "Poet" {
		t.Errorf("reloaded assistants = %+v", reloaded.Assistants())
	}
}

func TestModelRefJSON(t *testing.T) {
	cases := []ModelRef{Auto(), Literal("mistral"), AssistantRef("a-1")}
	for _, ref := range cases {
		data, err := ref.MarshalJSON()
		if err != nil {
			t.Fatal(err)
		}
		var back ModelRef
		if err := back.UnmarshalJSON(data); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != ref {
			t.Errorf("round trip %+v -> %+v", ref, back)
		}
	}

	var bad ModelRef
	if err := bad.UnmarshalJSON([]byte(`{"kind":"banana"}`)); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestConcurrentSessionOpsDuringTurn(t *testing.T) {
	release := make(chan struct{})
	fd := &fakeDispatcher{fn: func(_ registry.Model, _ dispatch.Request) (dispatch.Result, error) {
		<-release
		return dispatch.Result{Text: "done"}, nil
	}}
	app := newTestApp(t, fd)

	id := app.Sessions()[0].ID
	if err := app.SetModel(id, Literal("llama3-70b-8192")); err != nil {
		t.Fatal(err)
	}

	reply := make(chan *Message, 1)
	go func() {
		reply <- app.SendMessage(context.Background(), id, Send{Text: "hello"})
	}()

	// Session operations racing the in-flight turn, as the TUI event loop
	// can issue them from its own goroutine.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := app.NewSession()
			app.Sessions()
			if _, ok := app.Session(id); !ok {
				t.Error("dispatching session vanished")
			}
			app.DeleteSession(s.ID)
		}()
	}
	close(release)
	wg.Wait()

	got := <-reply
	if got == nil || got.Content != "done" {
		t.Fatalf("turn reply = %+v", got)
	}
	s, ok := app.Session(id)
	if !ok || s.Turn != TurnCompleted {
		t.Fatalf("after turn: ok=%v turn=%v", ok, s.Turn)
	}
	if len(app.Sessions()) == 0 {
		t.Fatal("session list empty")
	}
}
