package main

import (
	"fmt"
	"regexp"
	"strings"
)

// SeoPack is a structured YouTube SEO reply, produced by the SEO assistant
// persona as five labelled sections.
type SeoPack struct {
	Title           string
	Description     string
	Tags            string
	Category        string
	ThumbnailPrompt string
}

var (
	seoTitleRe       = regexp.MustCompile(`(?s)^Title:(.*?)\nDescription:`)
	seoDescriptionRe = regexp.MustCompile(`(?s)\nDescription:(.*?)\nTags \(Keywords\):`)
	seoTagsRe        = regexp.MustCompile(`(?s)\nTags \(Keywords\):(.*?)\nVideo Category:`)
	seoCategoryRe    = regexp.MustCompile(`(?s)\nVideo Category:(.*?)\nThumbnail Prompt \(for AI\):`)
	seoThumbnailRe   = regexp.MustCompile(`(?s)\nThumbnail Prompt \(for AI\):(.*)$`)
)

// ParseSeoPack splits labelled SEO output into its sections. The second
// return is false when the text is not shaped like an SEO pack.
func ParseSeoPack(content string) (SeoPack, bool) {
	var p SeoPack
	var any bool

	grab := func(re *regexp.Regexp) string {
		m := re.FindStringSubmatch(content)
		if m == nil {
			return ""
		}
		any = true
		return strings.TrimSpace(m[1])
	}

	p.Title = grab(seoTitleRe)
	p.Description = grab(seoDescriptionRe)
	p.Tags = grab(seoTagsRe)
	p.Category = grab(seoCategoryRe)
	p.ThumbnailPrompt = grab(seoThumbnailRe)
	return p, any
}

// Render formats the pack for terminal display.
func (p SeoPack) Render() string {
	var sb strings.Builder
	sb.WriteString("## YouTube SEO Pack\n\n")
	section := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&sb, "**%s**\n\n%s\n\n", name, value)
	}
	section("Title", p.Title)
	section("Description", p.Description)
	section("Tags (Keywords)", p.Tags)
	section("Video Category", p.Category)
	section("Thumbnail Prompt", p.ThumbnailPrompt)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
