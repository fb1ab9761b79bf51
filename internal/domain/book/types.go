package book

import (
	"errors"
	"fmt"
)

// ErrMissingParam is returned when a required request parameter is blank.
var ErrMissingParam = errors.New("missing required parameter")

// FetchError marks a failure of the fetch collaborator, as opposed to an
// empty extraction.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SearchResult is one book found on a source's search page.
type SearchResult struct {
	SourceID    string `json:"sourceId"`
	SourceName  string `json:"sourceName"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	Intro       string `json:"intro"`
	Kind        string `json:"kind"`
	LastChapter string `json:"lastChapter"`
	CoverURL    string `json:"coverUrl"`
	BookURL     string `json:"bookUrl"`
	WordCount   string `json:"wordCount"`
}

// SourceResults is the outcome of searching one source. Err is set when the
// fetch failed; Results is then empty.
type SourceResults struct {
	SourceID string         `json:"sourceId"`
	Results  []SearchResult `json:"results"`
	Err      error          `json:"-"`
}

// Info is the detail page of one book.
type Info struct {
	Name        string `json:"name"`
	Author      string `json:"author"`
	Intro       string `json:"intro"`
	Kind        string `json:"kind"`
	LastChapter string `json:"lastChapter"`
	CoverURL    string `json:"coverUrl"`
	TocURL      string `json:"tocUrl"`
	WordCount   string `json:"wordCount"`
}

// Chapter is one toc entry.
type Chapter struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	IsVip bool   `json:"isVip"`
}

// TocPage is one page of a table of contents.
type TocPage struct {
	Chapters   []Chapter `json:"chapters"`
	NextTocURL string    `json:"nextTocUrl"`
}

// Content types.
const (
	ContentHTML = "html"
	ContentText = "text"
)

// Content is one chapter's text.
type Content struct {
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	ContentType    string  `json:"contentType"`
	NextContentURL *string `json:"nextContentUrl"`
}
