package book

import (
	"strings"
	"testing"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `<html><body>
<ul class="book-list">
  <li><span class="name">X 小说</span><span class="author">甲</span><a class="detail" href="/book/1">d</a><img src="/c/1.jpg"></li>
  <li><span class="name">Y</span><span class="author">乙</span><a class="detail" href="https://other.example/book/2">d</a></li>
  <li><span class="author">nobody</span></li>
</ul>
</body></html>`

func testSource() *source.Source {
	return &source.Source{
		URL:       "http://site",
		Name:      "Site",
		SearchURL: "/search?q={{key}}&p={{page}}",
		Search: &source.SearchRule{
			BookList: "@css:.book-list > li",
			Name:     "@css:.name@text",
			Author:   "@css:.author@text",
			BookURL:  "@css:a.detail@href",
			CoverURL: "@css:img@src",
		},
		BookInfo: &source.BookInfoRule{
			Name:     "@css:h1@text",
			Author:   "@css:.info .author@text",
			Intro:    "@css:#intro@text##简介：",
			CoverURL: "@css:.cover img@src",
			TocURL:   "@css:a.toc@href",
		},
		Toc: &source.TocRule{
			ChapterList: "@css:#list dd",
			ChapterName: "@css:a@text",
			ChapterURL:  "@css:a@href",
			IsVip:       "@css:a@data-vip",
			NextTocURL:  "@css:a.next@href",
		},
		Content: &source.ContentRule{
			Content:        "@css:#content@html",
			Title:          "@css:h1@text",
			NextContentURL: "@css:a.next@href",
			ReplaceRegex:   "广告文字##",
		},
	}
}

func TestExtractSearchResults(t *testing.T) {
	results := ExtractSearchResults(searchPage, testSource(), "http://site/search?q=x")
	require.Len(t, results, 2, "records without name or url are dropped")

	assert.Equal(t, SearchResult{
		SourceID:   "http://site",
		SourceName: "Site",
		Name:       "X 小说",
		Author:     "甲",
		BookURL:    "http://site/book/1",
		CoverURL:   "http://site/c/1.jpg",
	}, results[0])
	assert.Equal(t, "https://other.example/book/2", results[1].BookURL)
	assert.Empty(t, results[1].CoverURL)
}

func TestExtractSearchResultsWithoutListRule(t *testing.T) {
	src := testSource()
	src.Search.BookList = ""
	results := ExtractSearchResults(searchPage, src, "http://site")
	assert.NotNil(t, results)
	assert.Empty(t, results)

	src.Search = nil
	assert.Empty(t, ExtractSearchResults(searchPage, src, "http://site"))
}

func TestExtractSearchResultsJSON(t *testing.T) {
	src := &source.Source{
		URL: "http://api",
		Search: &source.SearchRule{
			BookList: "$.data.books[*]",
			Name:     "$.title",
			Author:   "author.name",
			BookURL:  "$.link",
		},
	}
	raw := `{"data":{"books":[{"title":"A","author":{"name":"Z"},"link":"/b/1"},{"title":"B","link":"/b/2"}]}}`

	results := ExtractSearchResults(raw, src, "http://api/search")
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Name)
	assert.Equal(t, "Z", results[0].Author)
	assert.Equal(t, "http://api/b/1", results[0].BookURL)
	assert.Empty(t, results[1].Author)
}

func TestExtractBookInfo(t *testing.T) {
	raw := `<html><body>
<h1>X 小说</h1>
<div class="info"><span class="author">甲</span></div>
<p id="intro">简介：一个故事</p>
<div class="cover"><img src="/c/1.jpg"></div>
<a class="toc" href="toc/1">目录</a>
</body></html>`

	info := ExtractBookInfo(raw, testSource(), "http://site/book/1/")
	assert.Equal(t, "X 小说", info.Name)
	assert.Equal(t, "甲", info.Author)
	assert.Equal(t, "一个故事", info.Intro)
	assert.Equal(t, "http://site/c/1.jpg", info.CoverURL)
	assert.Equal(t, "http://site/book/1/toc/1", info.TocURL)
	assert.Empty(t, info.Kind)

	src := testSource()
	src.BookInfo = nil
	assert.Equal(t, &Info{}, ExtractBookInfo(raw, src, "http://site"))
}

func TestExtractTocPage(t *testing.T) {
	raw := `<div id="list"><dl>
<dd><a href="/c/1.html">第一章</a></dd>
<dd><a href="/c/2.html" data-vip="VIP">第二章</a></dd>
<dd><span>empty</span></dd>
</dl></div>
<a class="next" href="/toc/2">下一页</a>`

	page := ExtractTocPage(raw, testSource(), "http://site/toc/1")
	require.Len(t, page.Chapters, 2)
	assert.Equal(t, Chapter{Name: "第一章", URL: "http://site/c/1.html"}, page.Chapters[0])
	assert.True(t, page.Chapters[1].IsVip)
	assert.Equal(t, "http://site/toc/2", page.NextTocURL)
}

func TestExtractTocPageLastPage(t *testing.T) {
	raw := `<div id="list"><dl><dd><a href="/c/9.html">第九章</a></dd></dl></div>`
	page := ExtractTocPage(raw, testSource(), "http://site/toc/3")
	assert.Len(t, page.Chapters, 1)
	assert.Equal(t, "", page.NextTocURL)

	src := testSource()
	src.Toc.ChapterList = ""
	page = ExtractTocPage(raw, src, "http://site/toc/3")
	assert.NotNil(t, page.Chapters)
	assert.Empty(t, page.Chapters)
	assert.Equal(t, "", page.NextTocURL)
}

func TestIsVip(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " vip ", "Yes"} {
		assert.True(t, IsVip(v), v)
	}
	for _, v := range []string{"", "0", "false", "vip only", "no"} {
		assert.False(t, IsVip(v), v)
	}
}

func TestExtractContent(t *testing.T) {
	raw := `<html><body><h1>第一章</h1><div id="content"><p>广告文字正文</p></div><a class="next" href="2.html">下一章</a></body></html>`

	c := ExtractContent(raw, testSource(), "http://site/c/1.html", nil)
	assert.Equal(t, "第一章", c.Title)
	assert.Contains(t, c.Content, "正文")
	assert.NotContains(t, c.Content, "广告文字")
	assert.Equal(t, ContentHTML, c.ContentType)
	require.NotNil(t, c.NextContentURL)
	assert.Equal(t, "http://site/c/2.html", *c.NextContentURL)
}

func TestExtractContentFallbacks(t *testing.T) {
	raw := `<html><body><p>plain body</p></body></html>`

	src := testSource()
	src.Content = nil
	c := ExtractContent(raw, src, "http://site/c/1.html", nil)
	assert.Contains(t, c.Content, "<p>plain body</p>")
	assert.Equal(t, ContentHTML, c.ContentType)
	assert.Empty(t, c.Title)
	assert.Nil(t, c.NextContentURL)

	src = testSource()
	src.Content = &source.ContentRule{Content: "@css:p@text", NextContentURL: "@css:a.next@href"}
	c = ExtractContent(raw, src, "http://site/c/1.html", nil)
	assert.Equal(t, "plain body", c.Content)
	assert.Equal(t, ContentText, c.ContentType)
	assert.Nil(t, c.NextContentURL, "absent next link is null")
}

func TestExtractContentSanitized(t *testing.T) {
	raw := `<div id="content"><p onclick="evil()">正文</p><script>alert(1)</script></div>`
	src := testSource()
	src.Content.ReplaceRegex = ""

	c := ExtractContent(raw, src, "http://site/c/1.html", bluemonday.UGCPolicy())
	assert.Contains(t, c.Content, "<p>正文</p>")
	assert.False(t, strings.Contains(c.Content, "script"))
	assert.NotContains(t, c.Content, "onclick")
}
