package registry

import "testing"

func TestFindModel(t *testing.T) {
	m, ok := FindModel("deepseek-coder")
	if !ok || m.Provider != ProviderDeepSeek {
		t.Errorf("FindModel(deepseek-coder) = %+v, %v", m, ok)
	}
	if _, ok := FindModel("no-such-model"); ok {
		t.Error("unknown model found")
	}
}

func TestAllModelsOrder(t *testing.T) {
	all := AllModels()
	if len(all) == 0 {
		t.Fatal("empty catalogue")
	}

	// Flattening preserves provider order, then in-provider order.
	idx := 0
	for _, p := range Providers() {
		for _, m := range p.Models {
			if all[idx].ID != m.ID {
				t.Fatalf("position %d: got %q, want %q", idx, all[idx].ID, m.ID)
			}
			idx++
		}
	}
	if idx != len(all) {
		t.Errorf("AllModels has %d entries, providers carry %d", len(all), idx)
	}
}

func TestCategories(t *testing.T) {
	if got := FirstInCategory(CategoryCoding); got != "deepseek-coder" {
		t.Errorf("FirstInCategory(CODING) = %q", got)
	}
	if got := FirstInCategory(Category("EMPTY")); got != MultimodalModelID {
		t.Errorf("empty bucket fallback = %q", got)
	}

	// Every routed model must exist in the catalogue.
	for _, c := range []Category{CategoryCoding, CategoryCreative, CategoryGeneral} {
		for _, id := range CategoryModels(c) {
			if _, ok := FindModel(id); !ok {
				t.Errorf("category %s routes to unknown model %q", c, id)
			}
		}
	}

	cases := map[string]Category{
		"CODING":   CategoryCoding,
		"CREATIVE": CategoryCreative,
		"GENERAL":  CategoryGeneral,
		"BANANA":   CategoryGeneral,
		"":         CategoryGeneral,
	}
	for in, want := range cases {
		if got := ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRouterAndMultimodalExist(t *testing.T) {
	if _, ok := FindModel(RouterModelID); !ok {
		t.Error("router model missing from catalogue")
	}
	m, ok := FindModel(MultimodalModelID)
	if !ok {
		t.Fatal("multimodal model missing from catalogue")
	}
	p, ok := FindProvider(m.Provider)
	if !ok || p.APIType != APIGemini {
		t.Errorf("multimodal model belongs to %+v", p)
	}
}

func TestCatalogueLookups(t *testing.T) {
	if _, ok := FindPrebuilt("Haiku Poet"); !ok {
		t.Error("Haiku Poet template missing")
	}
	if _, ok := FindVoice(DefaultVoiceID); !ok {
		t.Error("default voice missing")
	}
	if _, ok := FindAspectRatio(DefaultAspectRatioID); !ok {
		t.Error("default aspect ratio missing")
	}
	if _, ok := FindImageModel(DefaultImageModelID); !ok {
		t.Error("default image model missing")
	}
}
