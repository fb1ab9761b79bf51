package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Request parameter limits
const (
	MaxKeywordLength = 256
	MaxURLLength     = 4096
	MaxRuleLength    = 16 * 1024
	MaxContentSize   = 2 * 1024 * 1024
	MaxBatchIDs      = 1000
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateKeyword validates a search keyword
func ValidateKeyword(keyword string) error {
	return ValidateString(keyword, "keyword", 1, MaxKeywordLength, true)
}

// ValidateURL validates a URL-valued request parameter. Only length and
// content are checked; relative and non-http values are left to the fetcher.
func ValidateURL(value, fieldName string, required bool) error {
	return ValidateString(value, fieldName, 1, MaxURLLength, required)
}

// ValidateRule validates a rule expression
func ValidateRule(rule, fieldName string) error {
	return ValidateString(rule, fieldName, 0, MaxRuleLength, false)
}

// ValidateIDs validates a batch of source ids
func ValidateIDs(ids []string) error {
	if len(ids) > MaxBatchIDs {
		return fmt.Errorf("ids must not exceed %d entries", MaxBatchIDs)
	}
	for i, id := range ids {
		if err := ValidateURL(id, fmt.Sprintf("ids[%d]", i), true); err != nil {
			return err
		}
	}
	return nil
}
