package action

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds all validation errors for a test case.
type ValidationResult struct {
	Errors []ValidationError
}

// Valid returns true if no validation errors were found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message from all validation errors.
func (r ValidationResult) Error() string {
	if r.Valid() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// ValidateTestCase checks a test case for required fields and structural
// correctness. Missing semantic enrichment is not an error; replay degrades
// to direct coordinates for such actions.
func ValidateTestCase(tc TestCase) ValidationResult {
	var result ValidationResult

	if tc.Name == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field: "name", Message: "required",
		})
	}
	if len(tc.Actions) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field: "actions", Message: "at least one action required",
		})
	}

	for i, a := range tc.Actions {
		field := func(name string) string { return fmt.Sprintf("actions[%d].%s", i, name) }

		if !a.Kind.Known() {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field("action_type"),
				Message: fmt.Sprintf("unknown action type %q", a.Kind),
			})
			continue
		}

		switch a.Kind {
		case Click:
			if a.X < 0 || a.Y < 0 {
				result.Errors = append(result.Errors, ValidationError{
					Field:   field("x"),
					Message: fmt.Sprintf("negative coordinates (%d, %d)", a.X, a.Y),
				})
			}
		case KeyPress:
			if a.Key == "" {
				result.Errors = append(result.Errors, ValidationError{
					Field: field("key"), Message: "required for key_press",
				})
			}
		case Scroll:
			if a.ScrollDX == 0 && a.ScrollDY == 0 {
				result.Errors = append(result.Errors, ValidationError{
					Field: field("scroll_dy"), Message: "scroll action with zero delta",
				})
			}
		}
	}

	return result
}
