// Package api serves the posts collection over HTTP.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/postbox/internal/model"
	"github.com/debemdeboas/postbox/internal/repository"
	"github.com/debemdeboas/postbox/internal/routes"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

type Method int

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
	MethodPatch
	MethodDelete
)

func ParseMethod(m string) Method {
	switch m {
	case http.MethodGet:
		return MethodGet
	case http.MethodPost:
		return MethodPost
	case http.MethodPatch:
		return MethodPatch
	case http.MethodDelete:
		return MethodDelete
	default:
		return MethodUnknown
	}
}

type methodHandler func(w http.ResponseWriter, r *http.Request, target routes.Target)

type Handler struct {
	repo         repository.PostRepository
	maxBodyBytes int64

	handlers map[Method]methodHandler
}

const defaultMaxBodyBytes = 1 << 20

func NewHandler(repo repository.PostRepository, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	h := &Handler{
		repo:         repo,
		maxBodyBytes: maxBodyBytes,
	}
	h.handlers = map[Method]methodHandler{
		MethodGet:    h.get,
		MethodPost:   h.post,
		MethodPatch:  h.patch,
		MethodDelete: h.delete,
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !routes.HasPrefix(r.URL.Path) {
		notFound(w, r)
		return
	}

	handle, found := h.handlers[ParseMethod(r.Method)]
	if !found {
		notFound(w, r)
		return
	}

	handle(w, r, routes.Parse(r.URL.Path))
}

// readBody consumes the whole request body before any store call is made.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// respondStoreError maps a store failure to its response.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		notFound(w, r)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("Store operation failed")
	internalServerError(w, r)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, target routes.Target) {
	switch target.Kind {
	case routes.Collection:
		posts, err := h.repo.List(r.Context())
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		ok(w, r, model.Document{Posts: posts})
	case routes.Item:
		post, err := h.repo.GetByID(r.Context(), target.ID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		ok(w, r, post)
	default:
		notFound(w, r)
	}
}

// post inserts regardless of the path shape: anything under the collection
// prefix is treated as the collection.
func (h *Handler) post(w http.ResponseWriter, r *http.Request, _ routes.Target) {
	body, err := h.readBody(w, r)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error reading request body")
		internalServerError(w, r)
		return
	}

	post, err := h.repo.Insert(r.Context(), model.PostFields{Body: body})
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("post_id", string(post.ID)).Msg("Post created")
	ok(w, r, post)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request, target routes.Target) {
	if target.Kind != routes.Item {
		notFound(w, r)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error reading request body")
		internalServerError(w, r)
		return
	}

	post, err := h.repo.UpdateByID(r.Context(), target.ID, model.PostFields{Body: body})
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("post_id", string(post.ID)).Msg("Post updated")
	ok(w, r, post)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, target routes.Target) {
	if target.Kind != routes.Item {
		notFound(w, r)
		return
	}

	post, err := h.repo.RemoveByID(r.Context(), target.ID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("post_id", string(post.ID)).Msg("Post deleted")
	ok(w, r, post)
}
