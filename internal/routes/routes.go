// Package routes parses request targets for the posts collection.
package routes

import (
	"strings"

	"github.com/debemdeboas/postbox/internal/config"
	"github.com/debemdeboas/postbox/internal/model"
)

type Kind int

const (
	Invalid Kind = iota
	Collection
	Item
)

func (k Kind) String() string {
	switch k {
	case Collection:
		return "collection"
	case Item:
		return "item"
	default:
		return "invalid"
	}
}

// Target is a parsed request path.
type Target struct {
	Kind Kind
	ID   model.PostID
}

// HasPrefix reports whether path is under the posts collection prefix.
func HasPrefix(path string) bool {
	return strings.HasPrefix(path, config.PostsUrlPath)
}

// Parse accepts exactly "/posts" and "/posts/{id}" with a non-empty id.
// Any other shape, including a trailing slash, is Invalid.
func Parse(path string) Target {
	if path == config.PostsUrlPath {
		return Target{Kind: Collection}
	}

	segments := strings.Split(path, "/")
	if len(segments) != 3 || segments[0] != "" || segments[1] != config.PostsSegment || segments[2] == "" {
		return Target{Kind: Invalid}
	}

	return Target{Kind: Item, ID: model.PostID(segments[2])}
}
