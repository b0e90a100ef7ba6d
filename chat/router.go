package chat

import (
	"context"
	"strings"

	"github.com/lumen-ai/lumen/dispatch"
	"github.com/lumen-ai/lumen/registry"
)

const routerSystemPrompt = `You are an expert prompt routing AI. Your job is to classify the user's prompt into one of three categories: 'CODING', 'CREATIVE', or 'GENERAL'.
- 'CODING': for prompts related to writing, debugging, explaining, or optimizing code.
- 'CREATIVE': for prompts related to writing stories, poems, scripts, or other artistic and imaginative tasks.
- 'GENERAL': for all other prompts, including questions, summaries, translations, and general conversation.
Respond with ONLY one of these three words: CODING, CREATIVE, or GENERAL. Do not add any other text or explanation.`

// Classify buckets a prompt with one call to the fast router model. It is
// best effort: an unrecognized reply or a failed call is GENERAL.
func (a *App) Classify(ctx context.Context, input string) registry.Category {
	router, ok := registry.FindModel(registry.RouterModelID)
	if !ok {
		return registry.CategoryGeneral
	}

	res, err := a.dispatcher.Complete(ctx, router, dispatch.Request{
		Input:        input,
		SystemPrompt: routerSystemPrompt,
	})
	if err != nil {
		return registry.CategoryGeneral
	}
	return registry.ParseCategory(strings.ToUpper(strings.TrimSpace(res.Text)))
}
