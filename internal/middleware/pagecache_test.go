package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCacheKeys(t *testing.T) {
	assert.Equal(t,
		[]string{"mm:page-cache:/p/summer-sale", "mm:page-cache:/p/black-friday"},
		pageCacheKeys([]string{"summer-sale", "", "  ", "black-friday"}))
	assert.Empty(t, pageCacheKeys(nil))

	// Purge and middleware must agree on the key for a given slug, or the
	// purge silently misses the cached render.
	assert.Equal(t, pageCacheKey("/p/summer-sale"), pageCacheKeys([]string{"summer-sale"})[0])
}

func TestPurgePageNilClient(t *testing.T) {
	require.NoError(t, PurgePage(context.Background(), nil, "any-slug"))
}

func TestIsCacheablePage(t *testing.T) {
	assert.True(t, isCacheablePage(http.StatusOK, http.Header{}))
	assert.False(t, isCacheablePage(http.StatusNotFound, http.Header{}))
	assert.False(t, isCacheablePage(http.StatusOK, http.Header{"Cache-Control": {"no-store"}}))
	assert.False(t, isCacheablePage(http.StatusOK, http.Header{"Cache-Control": {"private, max-age=0"}}))
}

func TestPageBodyWriterCapture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	w := &pageBodyWriter{ResponseWriter: c.Writer, maxBodyBytes: 8}
	_, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(w.body))
	assert.False(t, w.overflow)

	// Crossing the limit marks overflow so the truncated body is never stored.
	_, err = w.Write([]byte("world"))
	require.NoError(t, err)
	assert.True(t, w.overflow)
}
