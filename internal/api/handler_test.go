package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debemdeboas/postbox/internal/model"
	"github.com/debemdeboas/postbox/internal/repository"
)

func TestMain(m *testing.M) {
	SetLogger(zerolog.New(io.Discard))
	repository.SetLogger(zerolog.New(io.Discard))
	os.Exit(m.Run())
}

func newTestHandler(t *testing.T) (*Handler, repository.PostRepository) {
	t.Helper()
	repo := repository.NewDocumentPostRepository(
		repository.NewFSBlobStore(filepath.Join(t.TempDir(), "db.json")), nil)
	t.Cleanup(func() { repo.Close() })
	return NewHandler(repo, 0), repo
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodePost(t *testing.T, rec *httptest.ResponseRecorder) model.Post {
	t.Helper()
	var p model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p), "body: %s", rec.Body.String())
	return p
}

func assertNotFound(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Not Found"}`, rec.Body.String())
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodGet, ParseMethod("GET"))
	assert.Equal(t, MethodPost, ParseMethod("POST"))
	assert.Equal(t, MethodPatch, ParseMethod("PATCH"))
	assert.Equal(t, MethodDelete, ParseMethod("DELETE"))
	assert.Equal(t, MethodUnknown, ParseMethod("PUT"))
	assert.Equal(t, MethodUnknown, ParseMethod("get"))
}

func TestListEmpty(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/posts", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"posts":[]}`, rec.Body.String())
}

func TestCreateThenGet(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/posts", strings.NewReader("hello"))
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodePost(t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "hello", created.Body)

	rec = do(t, h, http.MethodGet, "/posts/"+string(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"`+string(created.ID)+`","body":"hello"}`, rec.Body.String())
}

func TestPostIsNotIdempotent(t *testing.T) {
	h, _ := newTestHandler(t)

	first := decodePost(t, do(t, h, http.MethodPost, "/posts", strings.NewReader("A")))
	second := decodePost(t, do(t, h, http.MethodPost, "/posts", strings.NewReader("A")))

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "A", first.Body)
	assert.Equal(t, "A", second.Body)
}

func TestListAfterInsertsKeepsOrder(t *testing.T) {
	h, _ := newTestHandler(t)

	var ids []model.PostID
	for _, body := range []string{"one", "two", "three", "four"} {
		ids = append(ids, decodePost(t, do(t, h, http.MethodPost, "/posts", strings.NewReader(body))).ID)
	}

	rec := do(t, h, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Posts, len(ids))
	for i, p := range doc.Posts {
		assert.Equal(t, ids[i], p.ID)
	}
}

func TestEmptyBodyIsEmptyText(t *testing.T) {
	h, _ := newTestHandler(t)

	created := decodePost(t, do(t, h, http.MethodPost, "/posts", nil))
	assert.Equal(t, "", created.Body)
}

func TestQueryStringDoesNotAffectRouting(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/posts?x=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"posts":[]}`, rec.Body.String())

	created := decodePost(t, do(t, h, http.MethodPost, "/posts?draft=true", strings.NewReader("hi")))
	rec = do(t, h, http.MethodGet, "/posts/"+string(created.ID)+"?x=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodePost(t, rec))

	assertNotFound(t, do(t, h, http.MethodGet, "/posts/?x=1", nil))
}

func TestGetUnknownID(t *testing.T) {
	h, _ := newTestHandler(t)

	assertNotFound(t, do(t, h, http.MethodGet, "/posts/doesnotexist", nil))
}

func TestPatch(t *testing.T) {
	h, repo := newTestHandler(t)
	created := decodePost(t, do(t, h, http.MethodPost, "/posts", strings.NewReader("A")))

	t.Run("existing id", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/posts/"+string(created.ID), strings.NewReader("B"))
		require.Equal(t, http.StatusOK, rec.Code)
		updated := decodePost(t, rec)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "B", updated.Body)
	})

	t.Run("unknown id leaves store unchanged", func(t *testing.T) {
		before, err := repo.List(context.Background())
		require.NoError(t, err)

		assertNotFound(t, do(t, h, http.MethodPatch, "/posts/doesnotexist", strings.NewReader("C")))

		after, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("collection path", func(t *testing.T) {
		body := &trackingReader{r: strings.NewReader("C")}
		assertNotFound(t, do(t, h, http.MethodPatch, "/posts", body))
		assert.False(t, body.read, "body should not be consumed")
	})
}

func TestDeleteThenGet(t *testing.T) {
	h, _ := newTestHandler(t)
	created := decodePost(t, do(t, h, http.MethodPost, "/posts", strings.NewReader("bye")))

	rec := do(t, h, http.MethodDelete, "/posts/"+string(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodePost(t, rec))

	assertNotFound(t, do(t, h, http.MethodGet, "/posts/"+string(created.ID), nil))
	assertNotFound(t, do(t, h, http.MethodDelete, "/posts/"+string(created.ID), nil))
}

func TestDeleteCollectionIsNotFound(t *testing.T) {
	h, repo := newTestHandler(t)
	do(t, h, http.MethodPost, "/posts", strings.NewReader("keep"))

	assertNotFound(t, do(t, h, http.MethodDelete, "/posts", nil))

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostOnItemPathInserts(t *testing.T) {
	h, repo := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/posts/whatever", strings.NewReader("x"))
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodePost(t, rec)
	assert.NotEqual(t, model.PostID("whatever"), created.ID)

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestUnroutableRequests(t *testing.T) {
	h, _ := newTestHandler(t)

	testCases := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/other"},
		{http.MethodPost, "/other"},
		{http.MethodPut, "/posts"},
		{http.MethodHead, "/posts"},
		{http.MethodOptions, "/posts/abc"},
		{http.MethodGet, "/posts/"},
		{http.MethodGet, "/posts/abc/"},
		{http.MethodGet, "/posts/abc/extra"},
		{http.MethodGet, "/postsabc"},
		{http.MethodPatch, "/posts/"},
		{http.MethodDelete, "/posts/abc/extra"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.target, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			if tc.method != http.MethodHead {
				assert.JSONEq(t, `{"message":"Not Found"}`, rec.Body.String())
			}
		})
	}
}

// trackingReader records whether anything read from it.
type trackingReader struct {
	r    io.Reader
	read bool
}

func (t *trackingReader) Read(p []byte) (int, error) {
	t.read = true
	return t.r.Read(p)
}

// brokenReader fails after yielding part of a body, like a dropped connection.
type brokenReader struct {
	sent bool
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset by peer")
}

func TestBodyStreamFailure(t *testing.T) {
	h, repo := newTestHandler(t)
	existing := decodePost(t, do(t, h, http.MethodPost, "/posts", strings.NewReader("A")))

	for _, tc := range []struct {
		method string
		target string
	}{
		{http.MethodPost, "/posts"},
		{http.MethodPatch, "/posts/" + string(existing.ID)},
	} {
		t.Run(tc.method, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.target, &brokenReader{})
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
		})
	}

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Post{existing}, posts)
}

func TestBodyTooLarge(t *testing.T) {
	repo := repository.NewDocumentPostRepository(
		repository.NewFSBlobStore(filepath.Join(t.TempDir(), "db.json")), nil)
	h := NewHandler(repo, 4)

	rec := do(t, h, http.MethodPost, "/posts", strings.NewReader("too long"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, h, http.MethodPost, "/posts", strings.NewReader("ok"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// failingRepo fails every call with an I/O style error.
type failingRepo struct{}

var errDisk = errors.New("disk on fire")

func (failingRepo) Insert(context.Context, model.PostFields) (*model.Post, error) {
	return nil, errDisk
}
func (failingRepo) GetByID(context.Context, model.PostID) (*model.Post, error) {
	return nil, errDisk
}
func (failingRepo) UpdateByID(context.Context, model.PostID, model.PostFields) (*model.Post, error) {
	return nil, errDisk
}
func (failingRepo) RemoveByID(context.Context, model.PostID) (*model.Post, error) {
	return nil, errDisk
}
func (failingRepo) List(context.Context) ([]model.Post, error) {
	return nil, errDisk
}
func (failingRepo) Close() error {
	return nil
}

func TestStoreFailureIsInternalServerError(t *testing.T) {
	h := NewHandler(failingRepo{}, 0)

	for _, tc := range []struct {
		method string
		target string
	}{
		{http.MethodGet, "/posts"},
		{http.MethodGet, "/posts/a"},
		{http.MethodPost, "/posts"},
		{http.MethodPatch, "/posts/a"},
		{http.MethodDelete, "/posts/a"},
	} {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.target, strings.NewReader("x"))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
		})
	}
}
