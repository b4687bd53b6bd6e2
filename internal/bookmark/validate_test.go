package bookmark_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/bookmarks/internal/bookmark"
	"github.com/joestump/bookmarks/internal/store"
)

func valid() map[string]any {
	return map[string]any{
		"title":  "Go",
		"url":    "https://go.dev",
		"rating": json.Number("4"),
	}
}

func with(key string, val any) map[string]any {
	f := valid()
	if val == nil {
		delete(f, key)
	} else {
		f[key] = val
	}
	return f
}

func TestValidateCreate_OK(t *testing.T) {
	v := bookmark.NewValidator(false)

	b, err := v.ValidateCreate(with("description", "The Go site"))
	require.NoError(t, err)
	assert.Equal(t, "Go", b.Title)
	assert.Equal(t, "https://go.dev", b.URL)
	assert.Equal(t, "The Go site", b.Description)
	assert.Equal(t, 4, b.Rating)
	assert.Empty(t, b.ID, "ids are assigned by the store")
}

func TestValidateCreate_DescriptionOptional(t *testing.T) {
	v := bookmark.NewValidator(false)

	b, err := v.ValidateCreate(valid())
	require.NoError(t, err)
	assert.Equal(t, "", b.Description)

	b, err = v.ValidateCreate(with("description", map[string]any{"x": 1}))
	require.NoError(t, err)
	assert.Equal(t, "", b.Description)
}

func TestValidateCreate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		kind    error
		message string
	}{
		{"empty body", map[string]any{}, bookmark.ErrMissingField, "Missing 'title' in request body"},
		{"missing title", with("title", nil), bookmark.ErrMissingField, "Missing 'title' in request body"},
		{"empty title", with("title", ""), bookmark.ErrMissingField, "Missing 'title' in request body"},
		{"object title", with("title", map[string]any{}), bookmark.ErrMissingField, "Missing 'title' in request body"},
		{"missing url", with("url", nil), bookmark.ErrMissingField, "Missing 'url' in request body"},
		{"empty url", with("url", ""), bookmark.ErrMissingField, "Missing 'url' in request body"},
		{"missing rating", with("rating", nil), bookmark.ErrMissingField, "Missing 'rating' in request body"},
		{"zero rating", with("rating", json.Number("0")), bookmark.ErrMissingField, "Missing 'rating' in request body"},
		{"rating too high", with("rating", json.Number("6")), bookmark.ErrInvalidRating, "Rating must be an integer between 1 and 5"},
		{"negative rating", with("rating", json.Number("-1")), bookmark.ErrInvalidRating, "Rating must be an integer between 1 and 5"},
		{"fractional rating", with("rating", json.Number("3.5")), bookmark.ErrInvalidRating, "Rating must be an integer between 1 and 5"},
		{"non-numeric rating", with("rating", "great"), bookmark.ErrInvalidRating, "Rating must be an integer between 1 and 5"},
		{"array rating", with("rating", []any{}), bookmark.ErrInvalidRating, "Rating must be an integer between 1 and 5"},
		{"not a url", with("url", "not a url"), bookmark.ErrInvalidURL, "The url must be a valid url"},
		{"no scheme", with("url", "go.dev"), bookmark.ErrInvalidURL, "The url must be a valid url"},
		{"ftp scheme", with("url", "ftp://go.dev/file"), bookmark.ErrInvalidURL, "The url must be a valid url"},
		{"javascript scheme", with("url", "javascript:alert(1)"), bookmark.ErrInvalidURL, "The url must be a valid url"},
	}

	v := bookmark.NewValidator(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := v.ValidateCreate(tt.fields)
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, errors.Is(err, tt.kind), "err = %v, want kind of %v", err, tt.kind)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidateCreate_RatingCheckedBeforeURL(t *testing.T) {
	v := bookmark.NewValidator(false)
	f := valid()
	f["rating"] = json.Number("9")
	f["url"] = "nope"

	_, err := v.ValidateCreate(f)
	assert.ErrorIs(t, err, bookmark.ErrInvalidRating)
}

func TestValidateCreate_RatingCoercion(t *testing.T) {
	v := bookmark.NewValidator(false)
	for _, raw := range []any{json.Number("5"), json.Number("5.0"), "5", " 5 ", float64(5)} {
		b, err := v.ValidateCreate(with("rating", raw))
		require.NoError(t, err, "rating %#v", raw)
		assert.Equal(t, 5, b.Rating)
	}
}

func TestValidURL(t *testing.T) {
	v := bookmark.NewValidator(false)
	good := []string{
		"http://example.com",
		"https://example.com/path?q=1#frag",
		"https://sub.example.co.uk:8443/a/b",
		"http://127.0.0.1:8000/bookmark",
	}
	bad := []string{
		"",
		"example.com",
		"https://",
		"mailto:someone@example.com",
		"https://exa mple.com",
		"https://example.com/<script>",
	}
	for _, u := range good {
		assert.True(t, v.ValidURL(u), u)
	}
	for _, u := range bad {
		assert.False(t, v.ValidURL(u), u)
	}
}

func TestValidatePatch_Empty(t *testing.T) {
	v := bookmark.NewValidator(false)
	for _, fields := range []map[string]any{
		{},
		{"unknown": "x"},
		{"title": ""},
		{"rating": json.Number("0")},
		{"title": nil, "url": nil},
	} {
		_, err := v.ValidatePatch(fields)
		require.Error(t, err, "%v", fields)
		assert.ErrorIs(t, err, bookmark.ErrEmptyPatch)
		assert.Equal(t, "Request body must contain either 'title', 'url', 'description' or 'rating'", err.Error())
	}
}

func TestValidatePatch_SingleField(t *testing.T) {
	v := bookmark.NewValidator(false)

	p, err := v.ValidatePatch(map[string]any{"title": "New title", "id": "ignored"})
	require.NoError(t, err)
	require.NotNil(t, p.Title)
	assert.Equal(t, "New title", *p.Title)
	assert.Nil(t, p.URL)
	assert.Nil(t, p.Description)
	assert.Nil(t, p.Rating)
	assert.Equal(t, []string{"title"}, p.Fields())
}

func TestValidatePatch_RatingMustBeInteger(t *testing.T) {
	v := bookmark.NewValidator(false)
	_, err := v.ValidatePatch(map[string]any{"rating": "lots"})
	assert.ErrorIs(t, err, bookmark.ErrInvalidRating)

	_, err = v.ValidatePatch(map[string]any{"rating": json.Number("2.5")})
	assert.ErrorIs(t, err, bookmark.ErrInvalidRating)
}

func TestValidatePatch_NoRevalidation(t *testing.T) {
	v := bookmark.NewValidator(false)

	p, err := v.ValidatePatch(map[string]any{"rating": json.Number("9"), "url": "not a url"})
	require.NoError(t, err)
	assert.Equal(t, 9, *p.Rating)
	assert.Equal(t, "not a url", *p.URL)
}

func TestValidatePatch_Revalidation(t *testing.T) {
	v := bookmark.NewValidator(true)

	tests := []struct {
		name   string
		fields map[string]any
		want   error
	}{
		{"rating out of range", map[string]any{"rating": json.Number("9")}, bookmark.ErrInvalidRating},
		{"bad url", map[string]any{"url": "not a url"}, bookmark.ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidatePatch(tt.fields)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	p, err := v.ValidatePatch(map[string]any{"url": "https://go.dev/doc", "rating": json.Number("2")})
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev/doc", *p.URL)
	assert.Equal(t, 2, *p.Rating)
}

func TestValidatePatch_IgnoresFalsyAndNonScalarValues(t *testing.T) {
	for _, revalidate := range []bool{false, true} {
		v := bookmark.NewValidator(revalidate)

		p, err := v.ValidatePatch(map[string]any{"title": "x", "rating": ""})
		require.NoError(t, err)
		assert.Nil(t, p.Rating, "empty rating must not become 0")
		assert.Equal(t, []string{"title"}, p.Fields())

		p, err = v.ValidatePatch(map[string]any{"title": "", "url": "", "rating": json.Number("3")})
		require.NoError(t, err)
		assert.Nil(t, p.Title)
		assert.Nil(t, p.URL)
		assert.Equal(t, []string{"rating"}, p.Fields())

		p, err = v.ValidatePatch(map[string]any{"description": "d", "rating": []any{1}})
		require.NoError(t, err)
		assert.Nil(t, p.Rating)
	}
}

func TestValidatePatch_NonScalarOnlyIsEmpty(t *testing.T) {
	v := bookmark.NewValidator(false)
	for _, fields := range []map[string]any{
		{"title": map[string]any{}},
		{"url": []any{"https://go.dev"}},
		{"title": map[string]any{"a": 1}, "rating": false},
	} {
		_, err := v.ValidatePatch(fields)
		assert.ErrorIs(t, err, bookmark.ErrEmptyPatch, "%v", fields)
	}
}

func TestPatch_Apply(t *testing.T) {
	v := bookmark.NewValidator(false)
	orig := &store.Bookmark{
		ID:          "id-1",
		Title:       "Old",
		URL:         "https://old.example",
		Description: "old desc",
		Rating:      1,
	}

	p, err := v.ValidatePatch(map[string]any{"description": "new desc", "rating": json.Number("5")})
	require.NoError(t, err)

	got := p.Apply(orig)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "Old", got.Title)
	assert.Equal(t, "https://old.example", got.URL)
	assert.Equal(t, "new desc", got.Description)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "old desc", orig.Description, "Apply must not mutate its input")
	assert.ElementsMatch(t, []string{"description", "rating"}, p.Fields())
}
