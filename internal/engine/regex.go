package engine

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

const (
	regexDelimiter = "##"
	regexArrow     = "=>"

	// regexTimeout bounds a single replacement so a pathological pattern
	// cannot stall an extraction.
	regexTimeout = 250 * time.Millisecond
)

// RegexPair is one ordered pattern/replacement step.
type RegexPair struct {
	Pattern     string
	Replacement string
}

type compiledRegex struct {
	re  *regexp2.Regexp
	err error
}

var regexCache = newCompileCache[compiledRegex](maxCachedRules)

// SplitRegex separates a rule into its main part and the "##" suffix pairs.
// With fewer than two "##" delimiters the whole rule is the main part.
func SplitRegex(rule string) (string, []RegexPair) {
	value := strings.TrimSpace(rule)
	if value == "" {
		return "", nil
	}

	parts := strings.Split(value, regexDelimiter)
	if len(parts) < 3 {
		return value, nil
	}

	return strings.TrimSpace(parts[0]), pairsFrom(parts[1:])
}

// ApplyRegex runs each pair over input in order. Invalid patterns are skipped.
func ApplyRegex(input string, pairs []RegexPair) string {
	result := input
	for _, pair := range pairs {
		result = replaceAll(result, pair)
	}
	return result
}

// ApplyReplaceSpec applies a free-form cleanup rule. The rule is either
// "##"-delimited pairs or one "pattern=>replacement" per line.
func ApplyReplaceSpec(input, spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return input
	}

	if strings.Contains(spec, regexDelimiter) {
		segments := make([]string, 0, 4)
		for _, s := range strings.Split(spec, regexDelimiter) {
			if s != "" {
				segments = append(segments, s)
			}
		}
		return ApplyRegex(input, pairsFrom(segments))
	}

	return ApplyRegex(input, ParseReplaceLines(spec))
}

// ParseReplaceLines parses the line form of a cleanup spec. Blank lines and
// lines without "=>" are dropped.
func ParseReplaceLines(spec string) []RegexPair {
	var pairs []RegexPair
	for _, line := range strings.Split(spec, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		pattern, replacement, ok := strings.Cut(line, regexArrow)
		if !ok {
			continue
		}
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		pairs = append(pairs, RegexPair{Pattern: pattern, Replacement: replacement})
	}
	return pairs
}

func pairsFrom(parts []string) []RegexPair {
	pairs := make([]RegexPair, 0, (len(parts)+1)/2)
	for i := 0; i < len(parts); i += 2 {
		pattern := parts[i]
		if pattern == "" {
			continue
		}
		replacement := ""
		if i+1 < len(parts) {
			replacement = parts[i+1]
		}
		pairs = append(pairs, RegexPair{Pattern: pattern, Replacement: replacement})
	}
	return pairs
}

func replaceAll(input string, pair RegexPair) string {
	re, err := cachedRegex(pair.Pattern)
	if err != nil {
		logger().Debug("skipping invalid pattern",
			zap.String("pattern", pair.Pattern),
			zap.Error(err))
		return input
	}

	out, err := re.Replace(input, pair.Replacement, -1, -1)
	if err != nil {
		logger().Debug("pattern replacement aborted",
			zap.String("pattern", pair.Pattern),
			zap.Error(err))
		return input
	}
	return out
}

// cachedRegex compiles pattern with multiline and dot-all semantics.
func cachedRegex(pattern string) (*regexp2.Regexp, error) {
	c := regexCache.get(pattern, func(pattern string) compiledRegex {
		re, err := regexp2.Compile(pattern, regexp2.Multiline|regexp2.Singleline)
		if err == nil {
			re.MatchTimeout = regexTimeout
		}
		return compiledRegex{re: re, err: err}
	})
	return c.re, c.err
}
