package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	noop := func(*Request, *Response) error { return nil }

	r := NewRouter()
	r.Handle(http.MethodGet, "/health", noop)
	r.Handle(http.MethodPost, "/fuse", noop)

	t.Run("exact match", func(t *testing.T) {
		h, err := r.Lookup(http.MethodGet, "/health")
		require.NoError(t, err)
		assert.NotNil(t, h)
	})

	t.Run("unknown path", func(t *testing.T) {
		_, err := r.Lookup(http.MethodGet, "/nope")
		assert.ErrorIs(t, err, errNotFound)
	})

	t.Run("known path, wrong method", func(t *testing.T) {
		_, err := r.Lookup(http.MethodDelete, "/health")
		assert.ErrorIs(t, err, errMethodNotAllowed)
	})

	t.Run("no prefix matching", func(t *testing.T) {
		_, err := r.Lookup(http.MethodGet, "/health/extra")
		assert.ErrorIs(t, err, errNotFound)
	})
}
