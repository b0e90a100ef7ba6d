package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
)

// detectTerminalImageSupport reports whether the terminal understands the
// iTerm2 inline-image protocol (iTerm2, WezTerm, Kitty, Alacritty, Windows
// Terminal).
func detectTerminalImageSupport() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	termProg := strings.ToLower(os.Getenv("TERM_PROGRAM"))

	if os.Getenv("ITERM_SESSION_ID") != "" || strings.Contains(termProg, "iterm") {
		return true
	}
	if strings.Contains(termProg, "wezterm") || strings.Contains(term, "wezterm") {
		return true
	}
	if strings.Contains(term, "kitty") || strings.Contains(term, "alacritty") {
		return true
	}
	if strings.Contains(termProg, "windowsterminal") {
		return true
	}
	// Konsole advertises Sixel but garbles OSC 1337 payloads.
	return false
}

// displayImageInTerminal prints a fetched image inline, scaled down to
// maxHeight pixels with aspect ratio preserved.
func displayImageInTerminal(data []byte, maxHeight int) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("image decode error: %w", err)
	}

	bounds := img.Bounds()
	height := bounds.Dy()
	if height > maxHeight {
		width := bounds.Dx()
		ratio := float64(width) / float64(height)
		newHeight := maxHeight
		newWidth := int(float64(newHeight) * ratio)

		// Nearest neighbor keeps this dependency-free.
		newImg := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		for y := 0; y < newHeight; y++ {
			for x := 0; x < newWidth; x++ {
				sx := int(float64(x) * float64(width) / float64(newWidth))
				sy := int(float64(y) * float64(height) / float64(newHeight))
				newImg.Set(x, y, img.At(sx, sy))
			}
		}
		img = newImg
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode error: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	_, err = fmt.Fprintf(os.Stdout, "\033]1337;File=name=%s;size=%d;inline=1:%s\a\n", "preview.png", len(encoded), encoded)
	return err
}
