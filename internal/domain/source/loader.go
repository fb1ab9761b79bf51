package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/gzip"
	"github.com/pelletier/go-toml/v2"
)

// maxDecompressed bounds gzip input expansion.
const maxDecompressed = 32 << 20

// ErrUnknownFormat is returned when a file cannot be decoded as any
// supported format.
var ErrUnknownFormat = errors.New("unrecognized source file format")

// ParseSources decodes a source file into raw items ready for Import.
// name is only used for its extension (.json, .yaml, .yml, .toml, .gz);
// without a known extension the content is sniffed.
func ParseSources(data []byte, name string) ([]any, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".gz" || mimetype.Detect(data).Is("application/gzip") {
		plain, err := gunzip(data)
		if err != nil {
			return nil, err
		}
		return ParseSources(plain, strings.TrimSuffix(name, filepath.Ext(name)))
	}

	v, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	v, err = canonicalize(v)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", name, err)
	}
	return Items(v), nil
}

// Items extracts source objects from a decoded document: an array, an
// object with a "sources" array, or a single object carrying
// bookSourceUrl. Anything else yields an empty list.
func Items(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if list, ok := t["sources"].([]any); ok {
			return list
		}
		if _, ok := t[KeyURL]; ok {
			return []any{t}
		}
	}
	return []any{}
}

func decode(data []byte, ext string) (any, error) {
	switch ext {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".toml":
		return decodeTOML(data)
	}

	if mimetype.Detect(data).Is("application/json") {
		return decodeJSON(data)
	}
	if v, err := decodeTOML(data); err == nil {
		return v, nil
	}
	if v, err := decodeYAML(data); err == nil {
		return v, nil
	}
	return nil, ErrUnknownFormat
}

func decodeJSON(data []byte) (any, error) {
	var v any
	if err := codec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return v, nil
}

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return v, nil
}

func decodeTOML(data []byte) (any, error) {
	var v map[string]any
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return v, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()

	plain, err := io.ReadAll(io.LimitReader(zr, maxDecompressed+1))
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	if len(plain) > maxDecompressed {
		return nil, fmt.Errorf("gzip payload exceeds %d bytes", maxDecompressed)
	}
	return plain, nil
}
