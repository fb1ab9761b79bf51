package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		required bool
		wantErr  string
	}{
		{"required missing", "", true, "name is required"},
		{"optional missing", "", false, ""},
		{"too long", strings.Repeat("字", 11), true, "name must not exceed 10 characters"},
		{"rune counted", strings.Repeat("字", 10), true, ""},
		{"null byte", "a\x00b", true, "name contains invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.value, "name", 1, 10, tt.required)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateKeyword(t *testing.T) {
	assert.NoError(t, ValidateKeyword("斗破苍穹"))
	assert.EqualError(t, ValidateKeyword(""), "keyword is required")
	assert.Error(t, ValidateKeyword(strings.Repeat("k", MaxKeywordLength+1)))
}

func TestValidateRule(t *testing.T) {
	assert.NoError(t, ValidateRule("", "rule"))
	assert.Error(t, ValidateRule(strings.Repeat("a", MaxRuleLength+1), "rule"))
}

func TestValidateIDs(t *testing.T) {
	assert.NoError(t, ValidateIDs(nil))
	assert.NoError(t, ValidateIDs([]string{"http://a", "http://b"}))
	assert.EqualError(t, ValidateIDs([]string{"http://a", ""}), "ids[1] is required")
	assert.Error(t, ValidateIDs(make([]string, MaxBatchIDs+1)))
}
