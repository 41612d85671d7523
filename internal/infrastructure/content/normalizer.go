// Package content turns captured input (webpages, pasted text,
// documents) into plain text the extraction boundary can work with.
package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxTextLength caps normalized text so extraction requests stay
// within the model's context budget.
const maxTextLength = 15000

// noiseSelectors are HTML elements removed before text extraction.
// These contribute no meaningful content to a recipe page.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header", "aside",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// NormalizeHTML strips noise from a page and returns its visible text,
// truncated to the extraction budget.
func NormalizeHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// Prefer the semantic content container when one exists.
	var container *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			container = sel.First()
			break
		}
	}
	if container == nil {
		container = doc.Selection
	}

	return Truncate(collapseWhitespace(container.Text())), nil
}

// Truncate caps text at the extraction budget, cutting on a rune
// boundary so multi-byte characters are never split.
func Truncate(text string) string {
	if len(text) <= maxTextLength {
		return text
	}
	cut := maxTextLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// collapseWhitespace squeezes runs of blank space into single spaces
// while keeping line breaks, so the text stays readable for the model.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
