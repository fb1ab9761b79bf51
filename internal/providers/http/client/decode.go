package client

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

const fallbackEncoding = "windows-1252"

// sniffContentType fills in a missing Content-Type from the body bytes.
// Only the media type is kept; charset detection is left to decodeBody.
func sniffContentType(data []byte, contentType string) string {
	if strings.TrimSpace(contentType) != "" {
		return contentType
	}
	mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return mediaType
}

// decodeBody converts a response body to UTF-8 text. A declared charset or
// a byte order mark wins, then an in-document meta declaration, then
// statistical detection.
func decodeBody(data []byte, contentType string) string {
	if len(data) == 0 {
		return ""
	}
	if isJSON(contentType) {
		return string(data)
	}

	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if certain || name != fallbackEncoding {
		if name == "utf-8" {
			return string(data)
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return string(data)
		}
		return string(decoded)
	}

	reader, err := charset.NewReaderLabel(detectCharset(data), bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// detectCharset guesses the charset label of data.
func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	label := strings.ToLower(result.Charset)
	if enc, _ := charset.Lookup(label); enc == nil {
		label = strings.ReplaceAll(label, "-", "")
	}
	return label
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	mediaType = strings.ToLower(mediaType)
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
