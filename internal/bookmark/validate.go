// Package bookmark holds the rules applied to bookmark payloads on the way in
// (validation and patch merging) and on the way out (sanitization and the
// public JSON shape).
package bookmark

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joestump/bookmarks/internal/store"
)

const (
	MinRating = 1
	MaxRating = 5
)

// patchFields are the only keys a patch may change.
var patchFields = []string{"title", "url", "description", "rating"}

// uriChars is the set of characters allowed anywhere in a URI.
var uriChars = regexp.MustCompile(`^[A-Za-z0-9:/?#\[\]@!$&'()*+,;=.\-_~%]+$`)

// Validator checks create and patch payloads. Payloads arrive as untyped
// field bags decoded from JSON, so presence follows JSON truthiness: null,
// false, 0 and "" all count as missing.
type Validator struct {
	// RevalidatePatch applies the create-path url and rating rules to the
	// fields a patch touches. Off by default: patches are only checked for
	// emptiness.
	RevalidatePatch bool

	v *validator.Validate
}

func NewValidator(revalidatePatch bool) *Validator {
	return &Validator{
		RevalidatePatch: revalidatePatch,
		v:               validator.New(),
	}
}

// ValidateCreate checks a create payload and returns the record to persist.
// Required fields are checked in the order title, url, rating and only the
// first failure is reported.
func (v *Validator) ValidateCreate(fields map[string]any) (*store.Bookmark, error) {
	title, ok := requiredText(fields, "title")
	if !ok {
		return nil, missingField("title")
	}
	rawURL, ok := requiredText(fields, "url")
	if !ok {
		return nil, missingField("url")
	}
	if !truthy(fields["rating"]) {
		return nil, missingField("rating")
	}

	rating, ok := toRating(fields["rating"])
	if !ok || !inRange(rating) {
		return nil, invalidRating()
	}

	if !v.ValidURL(rawURL) {
		return nil, invalidURL()
	}

	description, _ := toText(fields["description"])

	return &store.Bookmark{
		Title:       title,
		URL:         rawURL,
		Description: description,
		Rating:      rating,
	}, nil
}

// ValidURL reports whether s is an absolute http or https URI with a host.
// It is a syntax check only; nothing is fetched.
func (v *Validator) ValidURL(s string) bool {
	if !uriChars.MatchString(s) {
		return false
	}
	if err := v.v.Var(s, "http_url"); err != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

// Patch is a validated partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string
	URL         *string
	Description *string
	Rating      *int
}

// ValidatePatch checks a patch payload. Unknown keys are ignored, and so are
// recognized keys whose value is falsy or not a scalar: such a key neither
// counts toward the one-field minimum nor changes the record.
func (v *Validator) ValidatePatch(fields map[string]any) (Patch, error) {
	present := 0
	for _, name := range patchFields {
		if patchable(fields[name]) {
			present++
		}
	}
	if present == 0 {
		return Patch{}, emptyPatch()
	}

	var p Patch
	p.Title = optionalText(fields, "title")
	p.URL = optionalText(fields, "url")
	p.Description = optionalText(fields, "description")

	if raw := fields["rating"]; patchable(raw) {
		// The rating column is an integer whatever RevalidatePatch says.
		rating, ok := toRating(raw)
		if !ok {
			return Patch{}, invalidRating()
		}
		p.Rating = &rating
	}

	if v.RevalidatePatch {
		if err := v.revalidate(p); err != nil {
			return Patch{}, err
		}
	}
	return p, nil
}

func (v *Validator) revalidate(p Patch) error {
	if p.URL != nil && !v.ValidURL(*p.URL) {
		return invalidURL()
	}
	if p.Rating != nil && !inRange(*p.Rating) {
		return invalidRating()
	}
	return nil
}

// Apply returns a copy of b with the patched fields overwritten.
func (p Patch) Apply(b *store.Bookmark) *store.Bookmark {
	out := *b
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.URL != nil {
		out.URL = *p.URL
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Rating != nil {
		out.Rating = *p.Rating
	}
	return &out
}

// Fields lists the names of the fields the patch changes.
func (p Patch) Fields() []string {
	var names []string
	if p.Title != nil {
		names = append(names, "title")
	}
	if p.URL != nil {
		names = append(names, "url")
	}
	if p.Description != nil {
		names = append(names, "description")
	}
	if p.Rating != nil {
		names = append(names, "rating")
	}
	return names
}

func inRange(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

func requiredText(fields map[string]any, name string) (string, bool) {
	raw := fields[name]
	if !truthy(raw) {
		return "", false
	}
	return toText(raw)
}

func optionalText(fields map[string]any, name string) *string {
	raw := fields[name]
	if !patchable(raw) {
		return nil
	}
	s, _ := toText(raw)
	return &s
}

// patchable reports whether a patch value is a truthy scalar.
func patchable(v any) bool {
	if !truthy(v) {
		return false
	}
	_, ok := toText(v)
	return ok
}

// truthy mirrors JSON-value truthiness: null, false, 0, NaN and "" are falsy,
// everything else (including "0", objects and arrays) is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t != ""
		}
		return f != 0 && !math.IsNaN(f)
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// toText converts scalar JSON values to text. Objects and arrays are rejected.
func toText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// toNumber coerces a JSON value to a number: numbers as-is, booleans to 0/1,
// strings parsed after trimming whitespace (empty string is 0).
func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toRating coerces v to an integer rating without checking bounds.
func toRating(v any) (int, bool) {
	f, ok := toNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
