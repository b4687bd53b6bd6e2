package bookmark

import "fmt"

// Kind classifies a rejected payload.
type Kind string

const (
	KindMissingField  Kind = "missing_field"
	KindInvalidRating Kind = "invalid_rating"
	KindInvalidURL    Kind = "invalid_url"
	KindEmptyPatch    Kind = "empty_patch"
)

// ValidationError is the structured rejection returned by the validator.
// Message is the exact text sent to clients.
type ValidationError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches on Kind only, so errors.Is(err, ErrMissingField) holds for any
// missing field.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingField  = &ValidationError{Kind: KindMissingField}
	ErrInvalidRating = &ValidationError{Kind: KindInvalidRating}
	ErrInvalidURL    = &ValidationError{Kind: KindInvalidURL}
	ErrEmptyPatch    = &ValidationError{Kind: KindEmptyPatch}
)

func missingField(name string) *ValidationError {
	return &ValidationError{
		Kind:    KindMissingField,
		Field:   name,
		Message: fmt.Sprintf("Missing '%s' in request body", name),
	}
}

func invalidRating() *ValidationError {
	return &ValidationError{
		Kind:    KindInvalidRating,
		Field:   "rating",
		Message: fmt.Sprintf("Rating must be an integer between %d and %d", MinRating, MaxRating),
	}
}

func invalidURL() *ValidationError {
	return &ValidationError{
		Kind:    KindInvalidURL,
		Field:   "url",
		Message: "The url must be a valid url",
	}
}

func emptyPatch() *ValidationError {
	return &ValidationError{
		Kind:    KindEmptyPatch,
		Message: "Request body must contain either 'title', 'url', 'description' or 'rating'",
	}
}
