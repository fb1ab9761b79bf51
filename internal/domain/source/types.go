package source

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no source has the requested key
	ErrNotFound = errors.New("source not found")
	// ErrInvalidSource is returned for records without a bookSourceUrl
	ErrInvalidSource = errors.New("missing bookSourceUrl")
	// ErrUnsupportedType is returned for any bookSourceType other than text
	ErrUnsupportedType = errors.New("unsupported bookSourceType, only 0(text) is allowed")
)

// Payload keys with special handling.
const (
	KeyURL     = "bookSourceUrl"
	KeyName    = "bookSourceName"
	KeyGroup   = "bookSourceGroup"
	KeyType    = "bookSourceType"
	KeyEnabled = "enabled"
)

// TypeText is the only accepted bookSourceType.
const TypeText = 0

// Source is the typed view of a stored book source. The stored payload may
// carry additional keys; they survive round trips through the store but are
// not represented here.
type Source struct {
	URL       string        `json:"bookSourceUrl"`
	Name      string        `json:"bookSourceName"`
	Group     string        `json:"bookSourceGroup"`
	Type      int           `json:"bookSourceType"`
	Enabled   bool          `json:"enabled"`
	Header    any           `json:"header,omitempty"`
	SearchURL string        `json:"searchUrl,omitempty"`
	Search    *SearchRule   `json:"ruleSearch,omitempty"`
	BookInfo  *BookInfoRule `json:"ruleBookInfo,omitempty"`
	Toc       *TocRule      `json:"ruleToc,omitempty"`
	Content   *ContentRule  `json:"ruleContent,omitempty"`
}

// Searchable reports whether the source can take part in a search.
func (s *Source) Searchable() bool {
	return s.SearchURL != "" && s.Search != nil
}

// SearchRule locates result records on a search page.
type SearchRule struct {
	BookList    string `json:"bookList,omitempty"`
	Name        string `json:"name,omitempty"`
	Author      string `json:"author,omitempty"`
	Intro       string `json:"intro,omitempty"`
	Kind        string `json:"kind,omitempty"`
	LastChapter string `json:"lastChapter,omitempty"`
	CoverURL    string `json:"coverUrl,omitempty"`
	BookURL     string `json:"bookUrl,omitempty"`
	WordCount   string `json:"wordCount,omitempty"`
}

// BookInfoRule extracts flat fields from a book detail page.
type BookInfoRule struct {
	Name        string `json:"name,omitempty"`
	Author      string `json:"author,omitempty"`
	Intro       string `json:"intro,omitempty"`
	Kind        string `json:"kind,omitempty"`
	LastChapter string `json:"lastChapter,omitempty"`
	CoverURL    string `json:"coverUrl,omitempty"`
	TocURL      string `json:"tocUrl,omitempty"`
	WordCount   string `json:"wordCount,omitempty"`
}

// TocRule extracts chapters and the next page link from a toc page.
type TocRule struct {
	ChapterList string `json:"chapterList,omitempty"`
	ChapterName string `json:"chapterName,omitempty"`
	ChapterURL  string `json:"chapterUrl,omitempty"`
	IsVip       string `json:"isVip,omitempty"`
	NextTocURL  string `json:"nextTocUrl,omitempty"`
}

// ContentRule extracts chapter text.
type ContentRule struct {
	Content        string `json:"content,omitempty"`
	Title          string `json:"title,omitempty"`
	NextContentURL string `json:"nextContentUrl,omitempty"`
	ReplaceRegex   string `json:"replaceRegex,omitempty"`
}

// Summary is the list view of a source.
type Summary struct {
	URL     string `json:"bookSourceUrl"`
	Name    string `json:"bookSourceName"`
	Group   string `json:"bookSourceGroup"`
	Type    int    `json:"bookSourceType"`
	Enabled bool   `json:"enabled"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Group   string
	Enabled *bool
	Search  string
}

// ImportError describes one rejected import item.
type ImportError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarizes an import batch.
type ImportResult struct {
	Imported   int           `json:"imported"`
	Duplicates int           `json:"duplicates"`
	Errors     []ImportError `json:"errors"`
}

// Record is the stored form of a source.
type Record struct {
	URL       string
	Name      string
	Group     string
	Type      int
	Enabled   bool
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
