package errors

import (
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Output formats accepted by the render stage.
var validFormats = []string{"svg", "png", "dot", "json"}

// ValidateEntityID validates a catalog entity ID taken from a URL or a flag.
// IDs end up in cache keys and Mongo document IDs, so they must be short,
// printable and free of path separators.
func ValidateEntityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "entity id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "entity id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "entity id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "entity id cannot contain path separators")
	}
	return nil
}

// ValidateNodeID validates a rendered node instance ID ("node-<id>-...").
func ValidateNodeID(id string) error {
	if !strings.HasPrefix(id, "node-") {
		return New(ErrCodeInvalidInput, "node id must start with \"node-\": %q", id)
	}
	return ValidateEntityID(strings.TrimPrefix(id, "node-"))
}

// ValidateFormat validates a single output format.
func ValidateFormat(format string) error {
	if !slices.Contains(validFormats, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)",
			format, strings.Join(validFormats, ", "))
	}
	return nil
}

// ValidateFormats validates every format in the list.
func ValidateFormats(formats []string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "at least one format is required")
	}
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSessionID validates a selection session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid session id %q", id)
	}
	return nil
}
