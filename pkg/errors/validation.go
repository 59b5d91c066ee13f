package errors

import (
	"strings"
	"unicode"
)

// ValidateColumnNames validates every non-empty name in the given list.
// Empty entries are skipped so optional columns can stay unset.
func ValidateColumnNames(names ...string) error {
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := ValidateColumnName(name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateColumnName validates a logical column name supplied through the
// configuration surface (key/value/id/weight names, axis columns).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
//
// Structural checks (does the column exist in the table, is it numeric)
// are done separately by the detector and converter.
func ValidateColumnName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "column name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "column name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "column name contains invalid control characters")
		}
	}

	return nil
}

// ValidateDistillName validates a distillation policy name against the
// closed set of built-in policies.
func ValidateDistillName(name string) error {
	switch strings.ToLower(name) {
	case "first", "last", "most":
		return nil
	}
	return New(ErrCodeInvalidDistill, "unknown distill policy %q (want first, last, or most)", name)
}
