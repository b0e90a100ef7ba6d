package main

import (
	"strings"
	"testing"
)

const sampleSeoReply = `Title: 10 Go Tricks You Should Know
Description: A fast tour of ten Go features
that make everyday code cleaner.
Tags (Keywords): go, golang, tips, programming
Video Category: Education
Thumbnail Prompt (for AI): A gopher juggling ten glowing runes, studio lighting`

func TestParseSeoPack(t *testing.T) {
	pack, ok := ParseSeoPack(sampleSeoReply)
	if !ok {
		t.Fatal("structured reply not recognized")
	}
	if pack.Title != "10 Go Tricks You Should Know" {
		t.Errorf("Title = %q", pack.Title)
	}
	if !strings.Contains(pack.Description, "everyday code cleaner") {
		t.Errorf("Description = %q", pack.Description)
	}
	if pack.Tags != "go, golang, tips, programming" {
		t.Errorf("Tags = %q", pack.Tags)
	}
	if pack.Category != "Education" {
		t.Errorf("Category = %q", pack.Category)
	}
	if pack.ThumbnailPrompt != "A gopher juggling ten glowing runes, studio lighting" {
		t.Errorf("ThumbnailPrompt = %q", pack.ThumbnailPrompt)
	}

	rendered := pack.Render()
	for _, want := range []string{"YouTube SEO Pack", "**Title**", "**Tags (Keywords)**", "Education"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render missing %q:\n%s", want, rendered)
		}
	}
}

func TestParseSeoPackRejectsPlainText(t *testing.T) {
	if _, ok := ParseSeoPack("Just a normal chat reply about titles and tags."); ok {
		t.Error("plain text recognized as SEO pack")
	}
	if _, ok := ParseSeoPack(""); ok {
		t.Error("empty text recognized as SEO pack")
	}
}
