package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><dl id="list">
<dd><a href="/c/1">One, part 1</a></dd>
<dd><a href="/c/2">Two</a></dd>
</dl><h1 class="title"> Book </h1></body></html>`

func writePage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))
	return path
}

func TestRunSingleRule(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-file", writePage(t), "-rule", "class.title@text"}, nil, &out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"engine":"jsoup-default","value":"Book","count":1}`, out.String())
}

func TestRunListWithFields(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-file", writePage(t),
		"-list", "@css:#list dd",
		"-fields", "name=@css:a@text, url=@css:a@href",
	}, nil, &out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"engine":"css","count":2,"items":[
		{"name":"One, part 1","url":"/c/1"},
		{"name":"Two","url":"/c/2"}
	]}`, out.String())

	out.Reset()
	err = run(context.Background(), []string{
		"-file", writePage(t),
		"-all", "-rule", "@css:#list a@href",
		"-base", "https://example.com/book/", "-resolve",
	}, nil, &out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"engine":"css","count":2,"values":["https://example.com/c/1","https://example.com/c/2"]}`, out.String())
}

func TestRunStdin(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-file", "-", "-all", "-rule", "$.items[*].n"},
		strings.NewReader(`{"items":[{"n":"a"},{"n":"b"}]}`), &out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"engine":"jsonpath","values":["a","b"],"count":2}`, out.String())
}

func TestRunErrors(t *testing.T) {
	tests := [][]string{
		{"-file", "x.html"},
		{"-rule", "a"},
		{"-rule", "a", "-file", "x.html", "-url", "http://x"},
		{"-rule", "a", "-url", "/relative/page"},
		{"-rule", "a", "-url", `ftp://host/file,{"method":"POST"}`},
		{"-rule", "a", "-file", filepath.Join(t.TempDir(), "missing.html")},
		{"-bogus"},
	}
	for _, args := range tests {
		var out bytes.Buffer
		assert.Error(t, run(context.Background(), args, nil, &out), strings.Join(args, " "))
	}
}

func TestParseFields(t *testing.T) {
	assert.Equal(t, map[string]string{
		"name": "a@text",
		"url":  "@css:a, b@href",
	}, parseFields("name=a@text,url=@css:a, b@href"))
	assert.Empty(t, parseFields(""))
}
