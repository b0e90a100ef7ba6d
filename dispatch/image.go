package dispatch

import (
	"math/rand"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultImageBase = "https://image.pollinations.ai"
	speechModelID    = "openai-audio"
	maxImageSide     = 1024
)

// randSeed is swapped out by tests that need deterministic URLs.
var randSeed = func() int { return rand.Intn(100000) }

// BuildImageURL constructs a generation URL for the given prompt. The aspect
// ratio is scaled so the longer side is 1024, with both dimensions floored to
// a multiple of 8, and a random seed keeps repeated prompts from returning
// the provider's cached render.
func BuildImageURL(prompt, aspectRatio, model string) string {
	w, h := ratioDimensions(aspectRatio)
	q := url.Values{}
	q.Set("width", strconv.Itoa(w))
	q.Set("height", strconv.Itoa(h))
	q.Set("seed", strconv.Itoa(randSeed()))
	q.Set("model", model)
	q.Set("nologo", "true")
	return defaultImageBase + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()
}

// SpeechURL constructs a text-to-speech URL for the given text and voice.
func SpeechURL(text, voice string) string {
	q := url.Values{}
	q.Set("model", speechModelID)
	q.Set("voice", voice)
	return defaultTextgenBase + "/" + url.PathEscape(text) + "?" + q.Encode()
}

// ratioDimensions converts a "W:H" ratio into pixel dimensions. Unparseable
// ratios fall back to a square.
func ratioDimensions(ratio string) (int, int) {
	wPart, hPart, ok := strings.Cut(ratio, ":")
	if !ok {
		return maxImageSide, maxImageSide
	}
	rw, err1 := strconv.ParseFloat(strings.TrimSpace(wPart), 64)
	rh, err2 := strconv.ParseFloat(strings.TrimSpace(hPart), 64)
	if err1 != nil || err2 != nil || rw <= 0 || rh <= 0 {
		return maxImageSide, maxImageSide
	}

	var w, h float64
	if rw >= rh {
		w = maxImageSide
		h = maxImageSide * rh / rw
	} else {
		h = maxImageSide
		w = maxImageSide * rw / rh
	}
	return floorTo8(w), floorTo8(h)
}

func floorTo8(v float64) int {
	n := int(v)
	return n - n%8
}
