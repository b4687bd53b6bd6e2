package bookmark

import "github.com/joestump/bookmarks/internal/store"

// Response is the public JSON representation of a bookmark.
type Response struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Rating      int    `json:"rating"`
}

// Serialize converts a stored bookmark into its public shape, sanitizing the
// free-text fields.
func Serialize(b *store.Bookmark) Response {
	return Response{
		ID:          b.ID,
		Title:       Sanitize(b.Title),
		URL:         Sanitize(b.URL),
		Description: Sanitize(b.Description),
		Rating:      b.Rating,
	}
}

// SerializeAll applies Serialize to every bookmark. The result is never nil so
// an empty store encodes as [].
func SerializeAll(bookmarks []*store.Bookmark) []Response {
	out := make([]Response, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, Serialize(b))
	}
	return out
}
