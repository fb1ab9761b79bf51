package book

import (
	"regexp"
	"strings"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/engine"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/urls"
)

// bodyRule is used when a source has no content rule.
const bodyRule = "@css:body@html"

var (
	vipPattern    = regexp.MustCompile(`(?i)^(1|true|vip|yes)$`)
	markupPattern = regexp.MustCompile(`<[^>]+>`)
)

// Sanitizer cleans chapter markup.
type Sanitizer interface {
	Sanitize(string) string
}

// ExtractSearchResults applies the source's search rules to a search page.
// Records with neither a name nor a book URL are dropped.
func ExtractSearchResults(raw string, src *source.Source, baseURL string) []SearchResult {
	results := []SearchResult{}
	rule := src.Search
	if rule == nil || rule.BookList == "" {
		return results
	}

	doc := engine.NewDocument(raw)
	text := engine.Options{BaseURL: baseURL}
	link := engine.Options{BaseURL: baseURL, ResolveURL: true}

	for _, item := range doc.List(rule.BookList) {
		r := SearchResult{
			SourceID:    src.URL,
			SourceName:  src.Name,
			Name:        pick(doc, item, rule.Name, text),
			Author:      pick(doc, item, rule.Author, text),
			Intro:       pick(doc, item, rule.Intro, text),
			Kind:        pick(doc, item, rule.Kind, text),
			LastChapter: pick(doc, item, rule.LastChapter, text),
			CoverURL:    pick(doc, item, rule.CoverURL, link),
			BookURL:     pick(doc, item, rule.BookURL, link),
			WordCount:   pick(doc, item, rule.WordCount, text),
		}
		if r.Name == "" && r.BookURL == "" {
			continue
		}
		results = append(results, r)
	}
	return results
}

// ExtractBookInfo applies flat field rules over a whole detail page.
func ExtractBookInfo(raw string, src *source.Source, baseURL string) *Info {
	info := &Info{}
	rule := src.BookInfo
	if rule == nil {
		return info
	}

	doc := engine.NewDocument(raw)
	text := engine.Options{BaseURL: baseURL}
	link := engine.Options{BaseURL: baseURL, ResolveURL: true}

	info.Name = apply(doc, rule.Name, text)
	info.Author = apply(doc, rule.Author, text)
	info.Intro = apply(doc, rule.Intro, text)
	info.Kind = apply(doc, rule.Kind, text)
	info.LastChapter = apply(doc, rule.LastChapter, text)
	info.CoverURL = apply(doc, rule.CoverURL, link)
	info.TocURL = apply(doc, rule.TocURL, link)
	info.WordCount = apply(doc, rule.WordCount, text)
	return info
}

// ExtractTocPage extracts one toc page: its chapters and the resolved link
// to the next page, or "" when there is none.
func ExtractTocPage(raw string, src *source.Source, baseURL string) *TocPage {
	page := &TocPage{Chapters: []Chapter{}}
	rule := src.Toc
	if rule == nil || rule.ChapterList == "" {
		return page
	}

	doc := engine.NewDocument(raw)
	text := engine.Options{BaseURL: baseURL}
	link := engine.Options{BaseURL: baseURL, ResolveURL: true}

	for _, item := range doc.List(rule.ChapterList) {
		ch := Chapter{
			Name:  pick(doc, item, rule.ChapterName, text),
			URL:   pick(doc, item, rule.ChapterURL, link),
			IsVip: IsVip(pick(doc, item, rule.IsVip, text)),
		}
		if ch.Name == "" && ch.URL == "" {
			continue
		}
		page.Chapters = append(page.Chapters, ch)
	}

	if rule.NextTocURL != "" {
		page.NextTocURL = urls.Resolve(doc.Apply(rule.NextTocURL, text), baseURL)
	}
	return page
}

// ExtractContent extracts chapter text. A missing or empty content rule
// result falls back to the page body markup. sanitizer may be nil.
func ExtractContent(raw string, src *source.Source, chapterURL string, sanitizer Sanitizer) *Content {
	rule := src.Content
	if rule == nil {
		rule = &source.ContentRule{}
	}

	doc := engine.NewDocument(raw)
	opts := engine.Options{BaseURL: chapterURL}

	content := apply(doc, rule.Content, opts)
	if content == "" {
		content = doc.Apply(bodyRule, opts)
	}
	content = engine.ApplyReplaceSpec(content, rule.ReplaceRegex)

	out := &Content{
		Title:       apply(doc, rule.Title, opts),
		ContentType: ContentText,
	}
	if markupPattern.MatchString(content) {
		out.ContentType = ContentHTML
		if sanitizer != nil {
			content = sanitizer.Sanitize(content)
		}
	}
	out.Content = content

	if rule.NextContentURL != "" {
		next := urls.Resolve(doc.Apply(rule.NextContentURL, engine.Options{BaseURL: chapterURL, ResolveURL: true}), chapterURL)
		if next != "" {
			out.NextContentURL = &next
		}
	}
	return out
}

// IsVip parses a vip flag value.
func IsVip(raw string) bool {
	return vipPattern.MatchString(strings.TrimSpace(raw))
}

func pick(doc *engine.Document, item engine.Item, rule string, opts engine.Options) string {
	if rule == "" {
		return ""
	}
	return doc.Pick(item, rule, opts)
}

func apply(doc *engine.Document, rule string, opts engine.Options) string {
	if rule == "" {
		return ""
	}
	return doc.Apply(rule, opts)
}
