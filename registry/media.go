package registry

// AspectRatio is a selectable image shape, expressed as "W:H".
type AspectRatio struct {
	ID   string
	Name string
}

// ImageModel is a selectable image-generation backend.
type ImageModel struct {
	ID   string
	Name string
}

const (
	DefaultAspectRatioID = "1:1"
	DefaultImageModelID  = "flux"
)

var aspectRatios = []AspectRatio{
	{ID: "1:1", Name: "Square"},
	{ID: "16:9", Name: "Landscape"},
	{ID: "9:16", Name: "Portrait"},
	{ID: "4:3", Name: "Standard"},
	{ID: "3:4", Name: "Tall"},
}

var imageModels = []ImageModel{
	{ID: "flux", Name: "Flux"},
	{ID: "turbo", Name: "Turbo"},
	{ID: "gptimage", Name: "GPT Image"},
}

// AspectRatios returns the selectable aspect ratios.
func AspectRatios() []AspectRatio {
	out := make([]AspectRatio, len(aspectRatios))
	copy(out, aspectRatios)
	return out
}

// ImageModels returns the selectable image-generation backends.
func ImageModels() []ImageModel {
	out := make([]ImageModel, len(imageModels))
	copy(out, imageModels)
	return out
}

// FindAspectRatio looks up an aspect ratio by id.
func FindAspectRatio(id string) (AspectRatio, bool) {
	for _, a := range aspectRatios {
		if a.ID == id {
			return a, true
		}
	}
	return AspectRatio{}, false
}

// FindImageModel looks up an image model by id.
func FindImageModel(id string) (ImageModel, bool) {
	for _, m := range imageModels {
		if m.ID == id {
			return m, true
		}
	}
	return ImageModel{}, false
}
