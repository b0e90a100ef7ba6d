// Package registry holds the static provider/model catalogue and the
// routing categories. Data is compiled-in configuration, never computed.
package registry

// APIType selects the wire format a provider speaks.
type APIType string

const (
	APIOpenAI APIType = "openai"
	APIGemini APIType = "google_gemini"
)

// Subtype marks models that deviate from their provider's default API.
type Subtype string

const (
	SubtypeChat    Subtype = "chat"
	SubtypeTextgen Subtype = "textgen"
)

// Provider identifiers.
const (
	ProviderGemini       = "google_gemini"
	ProviderPollinations = "pollinations"
	ProviderDeepSeek     = "deepseek"
	ProviderGroq         = "groq"
	ProviderOpenRouter   = "openrouter"
)

type Model struct {
	ID       string
	Name     string
	Provider string
	Subtype  Subtype // empty means the provider default (chat)
	Group    string  // display grouping in the model picker
}

type Provider struct {
	ID      string
	Name    string
	APIUrl  string
	APIType APIType
	Models  []Model
}

// Category is a routing bucket for the auto-router.
type Category string

const (
	CategoryCoding   Category = "CODING"
	CategoryCreative Category = "CREATIVE"
	CategoryGeneral  Category = "GENERAL"
)

var providers = []Provider{
	{
		ID:      ProviderGemini,
		Name:    "Google Gemini",
		APIType: APIGemini,
		Models: []Model{
			{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: ProviderGemini},
		},
	},
	{
		ID:      ProviderPollinations,
		Name:    "Pollinations",
		APIUrl:  "https://api.pollinations.ai/v1/chat/completions",
		APIType: APIOpenAI,
		Models: []Model{
			{ID: "openai", Name: "OpenAI", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "ChatGPT"},
			{ID: "openai-fast", Name: "OpenAI Fast", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "ChatGPT"},
			{ID: "llama-fast-roblox", Name: "Llama Fast (Roblox)", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Meta (Llama)"},
			{ID: "llama-roblox", Name: "Llama (Roblox)", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Meta (Llama)"},
			{ID: "llamascout", Name: "Llama Scout", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Meta (Llama)"},
			{ID: "mistral", Name: "Mistral", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Mistral AI"},
			{ID: "mistral-roblox", Name: "Mistral (Roblox)", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Mistral AI"},
			{ID: "phi", Name: "Microsoft Phi", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Microsoft (Phi)"},
			{ID: "qwen-coder", Name: "Qwen Coder", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Alibaba Cloud (Qwen)"},
			{ID: "bidara", Name: "Bidara", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Community Models"},
			{ID: "midijourney", Name: "Midijourney", Provider: ProviderPollinations, Subtype: SubtypeTextgen, Group: "Community Models"},
		},
	},
	{
		ID:      ProviderDeepSeek,
		Name:    "DeepSeek",
		APIUrl:  "https://api.deepseek.com/chat/completions",
		APIType: APIOpenAI,
		Models: []Model{
			{ID: "deepseek-chat", Name: "Chat", Provider: ProviderDeepSeek},
			{ID: "deepseek-coder", Name: "Coder", Provider: ProviderDeepSeek},
		},
	},
	{
		ID:      ProviderGroq,
		Name:    "Groq",
		APIUrl:  "https://api.groq.com/openai/v1/chat/completions",
		APIType: APIOpenAI,
		Models: []Model{
			{ID: "llama3-8b-8192", Name: "LLaMA3 8b", Provider: ProviderGroq},
			{ID: "llama3-70b-8192", Name: "LLaMA3 70b", Provider: ProviderGroq},
			{ID: "mixtral-8x7b-32768", Name: "Mixtral 8x7b", Provider: ProviderGroq},
		},
	},
	{
		ID:      ProviderOpenRouter,
		Name:    "OpenRouter",
		APIUrl:  "https://openrouter.ai/api/v1/chat/completions",
		APIType: APIOpenAI,
		Models: []Model{
			{ID: "deepseek/deepseek-chat-v3-0324:free", Name: "DeepSeek V3 (free)", Provider: ProviderOpenRouter},
			{ID: "meta-llama/llama-3.3-70b-instruct:free", Name: "Llama 3.3 70b (free)", Provider: ProviderOpenRouter},
		},
	},
}

// categories maps routing buckets to model ids, first entry wins.
var categories = map[Category][]string{
	CategoryCoding:   {"deepseek-coder", "qwen-coder"},
	CategoryCreative: {"deepseek-chat"},
	CategoryGeneral:  {"llama3-70b-8192", "mixtral-8x7b-32768"},
}

// RouterModelID is the fast model used for auto-routing classification.
const RouterModelID = "llama3-8b-8192"

// MultimodalModelID is the model attachments are forced onto.
const MultimodalModelID = "gemini-2.5-flash"

// Providers returns the provider catalogue in display order.
func Providers() []Provider {
	return providers
}

// AllModels returns every model, provider order first, in-provider order second.
func AllModels() []Model {
	var all []Model
	for _, p := range providers {
		all = append(all, p.Models...)
	}
	return all
}

// FindProvider looks a provider up by id.
func FindProvider(id string) (Provider, bool) {
	for _, p := range providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// FindModel looks a model up by id across all providers.
func FindModel(id string) (Model, bool) {
	for _, p := range providers {
		for _, m := range p.Models {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Model{}, false
}

// CategoryModels returns the ordered model ids of a routing bucket.
func CategoryModels(c Category) []string {
	return categories[c]
}

// FirstInCategory returns the preferred model id of a bucket, falling back
// to the multimodal model if the bucket is empty.
func FirstInCategory(c Category) string {
	if ids := categories[c]; len(ids) > 0 {
		return ids[0]
	}
	return MultimodalModelID
}

// ParseCategory maps a normalized classification reply to a bucket.
// Anything unrecognized is GENERAL.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryCoding:
		return CategoryCoding
	case CategoryCreative:
		return CategoryCreative
	default:
		return CategoryGeneral
	}
}
