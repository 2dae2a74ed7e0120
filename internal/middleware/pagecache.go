package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	pageCachePrefix           = "mm:page-cache:"
	defaultPageCacheTTL       = 15 * time.Second
	defaultPageCacheMaxBody   = 1 << 20 // 1 MiB
	staleWhileRevalidateValue = 60
)

// PageCacheOptions tunes the public landing-page cache.
type PageCacheOptions struct {
	TTL          time.Duration
	Disable      bool
	MaxBodyBytes int
}

// A cached render is keyed by request path only: published pages do not vary
// by query string, and path-only keys let mutations purge a slug exactly
// instead of scanning.
func pageCacheKey(path string) string {
	return pageCachePrefix + path
}

func pageCacheKeys(slugs []string) []string {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		keys = append(keys, pageCacheKey("/p/"+slug))
	}
	return keys
}

type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	BodyBase64  string `json:"body_base64"`
	Body        []byte `json:"-"`
}

type pageBodyWriter struct {
	gin.ResponseWriter
	body         []byte
	maxBodyBytes int
	overflow     bool
}

func (w *pageBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *pageBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *pageBodyWriter) capture(data []byte) {
	if w.maxBodyBytes <= 0 || w.overflow || len(data) == 0 {
		return
	}
	remaining := w.maxBodyBytes - len(w.body)
	if remaining <= 0 {
		w.overflow = true
		return
	}
	if len(data) > remaining {
		w.body = append(w.body, data[:remaining]...)
		w.overflow = true
		return
	}
	w.body = append(w.body, data...)
}

// PageCache serves recently rendered public pages from Redis. Logged-in
// requests bypass the cache so an admin always sees the live row.
func PageCache(rdb *redis.Client, opts PageCacheOptions) gin.HandlerFunc {
	if opts.TTL <= 0 {
		opts.TTL = defaultPageCacheTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultPageCacheMaxBody
	}
	ttlSeconds := int(opts.TTL / time.Second)

	return func(c *gin.Context) {
		if opts.Disable || rdb == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if IsAuthenticated(c) {
			c.Next()
			setPrivatePageHeader(c.Writer, c.Writer.Status())
			return
		}

		key := pageCacheKey(c.Request.URL.Path)
		if page, ok := readCachedPage(c.Request.Context(), rdb, key); ok {
			setPublicPageHeader(c.Writer, page.Status, ttlSeconds)
			c.Writer.Header().Set("x-cache", "hit")
			c.Data(page.Status, page.ContentType, page.Body)
			c.Abort()
			return
		}

		buffer := &pageBodyWriter{
			ResponseWriter: c.Writer,
			maxBodyBytes:   opts.MaxBodyBytes,
		}
		c.Writer = buffer
		c.Next()

		status := c.Writer.Status()
		if status <= 0 {
			status = http.StatusOK
		}
		if !isCacheablePage(status, c.Writer.Header()) {
			return
		}
		setPublicPageHeader(c.Writer, status, ttlSeconds)
		if buffer.overflow || len(buffer.body) == 0 {
			return
		}

		payload := cachedPage{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			BodyBase64:  base64.StdEncoding.EncodeToString(buffer.body),
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return
		}
		_ = rdb.Set(c.Request.Context(), key, raw, opts.TTL).Err()
	}
}

// PurgePage drops the cached renders for the given slugs. Publish, unpublish,
// update and delete call this so a page never serves a stale status for the
// cache TTL.
func PurgePage(ctx context.Context, rdb *redis.Client, slugs ...string) error {
	if rdb == nil {
		return nil
	}
	keys := pageCacheKeys(slugs)
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// PurgePageCache drops every cached page render.
func PurgePageCache(ctx context.Context, rdb *redis.Client) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pageCachePrefix+"*", 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func readCachedPage(ctx context.Context, rdb *redis.Client, key string) (cachedPage, bool) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return cachedPage{}, false
	}
	var page cachedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return cachedPage{}, false
	}
	if page.Status <= 0 {
		page.Status = http.StatusOK
	}
	if page.ContentType == "" {
		page.ContentType = "text/html; charset=utf-8"
	}
	body, err := base64.StdEncoding.DecodeString(page.BodyBase64)
	if err != nil {
		return cachedPage{}, false
	}
	page.Body = body
	return page, true
}

func isCacheablePage(status int, headers http.Header) bool {
	if status != http.StatusOK {
		return false
	}
	cacheControl := strings.ToLower(headers.Get("Cache-Control"))
	return !strings.Contains(cacheControl, "no-cache") &&
		!strings.Contains(cacheControl, "no-store") &&
		!strings.Contains(cacheControl, "private")
}

func setPrivatePageHeader(w gin.ResponseWriter, status int) {
	if status != http.StatusOK {
		return
	}
	w.Header().Set("cache-control", "private, max-age=0, no-cache, no-store, must-revalidate")
}

func setPublicPageHeader(w gin.ResponseWriter, status, ttlSeconds int) {
	if status != http.StatusOK {
		return
	}
	if ttlSeconds <= 0 {
		ttlSeconds = int(defaultPageCacheTTL / time.Second)
	}
	if w.Header().Get("cache-control") != "" {
		return
	}
	w.Header().Set("cache-control",
		"public, max-age="+strconv.Itoa(ttlSeconds)+
			", stale-while-revalidate="+strconv.Itoa(staleWhileRevalidateValue))
}
