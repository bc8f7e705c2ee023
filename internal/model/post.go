// Package model defines the data structures shared by the store and the HTTP layer.
package model

type PostID string

// Post is the only resource exposed by the service.
type Post struct {
	ID   PostID `json:"id"`
	Body string `json:"body"`
}

// PostFields holds the fields a client may set on insert or update.
// The id is never part of it: the store assigns it and keeps it.
type PostFields struct {
	Body string
}

// Apply merges the fields into p, leaving the id untouched.
func (f PostFields) Apply(p *Post) {
	p.Body = f.Body
}

// Document is the persisted collection, and also the GET /posts payload.
type Document struct {
	Posts []Post `json:"posts"`
}

// Index returns the position of the post with the given id, or -1.
func (d *Document) Index(id PostID) int {
	for i := range d.Posts {
		if d.Posts[i].ID == id {
			return i
		}
	}
	return -1
}
