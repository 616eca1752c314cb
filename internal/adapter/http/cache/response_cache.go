package cache

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"thingstodo/internal/adapter/http/middleware"
	"thingstodo/internal/core/telemetry"
	"thingstodo/pkg/tracing"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ResponseCacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

// ResponseCache keeps successful GET responses in memory for a short TTL.
// Any successful write invalidates everything cached. A GET that started
// before a write finished is served but never stored.
type ResponseCache struct {
	cache   *gocache.Cache
	config  map[string]ResponseCacheConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics

	mu         sync.Mutex
	generation uint64
}

type CachedResponse struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
	Timestamp  time.Time
}

func NewResponseCache(logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ResponseCache{
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
		config:  map[string]ResponseCacheConfig{},
		logger:  logger,
		metrics: metrics,
	}
}

func (rc *ResponseCache) SetConfig(path string, config ResponseCacheConfig) {
	rc.config[path] = config
}

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			rc.invalidateOnSuccess(c)
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		config, exists := rc.config[path]

		if !exists || !config.Enabled {
			c.Next()
			return
		}

		cacheKey := rc.generateCacheKey(c, path)

		if cachedResp, found := rc.cache.Get(cacheKey); found {
			cached := cachedResp.(CachedResponse)

			_, span := tracing.CreateChildSpan(c.Request.Context(), "cache.response.hit", []attribute.KeyValue{
				attribute.String("cache.key", cacheKey),
				attribute.String("cache.path", path),
				attribute.String("cache.age", time.Since(cached.Timestamp).String()),
				attribute.Int("cache.body_size", len(cached.Body)),
			})
			defer span.End()

			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(c.Request.Context(), path)
			}

			rc.logger.Debug("Cache hit",
				zap.String("path", path),
				zap.Duration("age", time.Since(cached.Timestamp)))

			for key, values := range cached.Headers {
				for _, value := range values {
					c.Header(key, value)
				}
			}

			c.Header("X-Cache", "HIT")
			c.Data(cached.StatusCode, "application/json; charset=utf-8", cached.Body)
			c.Abort()
			return
		}

		_, span := tracing.CreateChildSpan(c.Request.Context(), "cache.response.miss", []attribute.KeyValue{
			attribute.String("cache.key", cacheKey),
			attribute.String("cache.path", path),
		})
		span.End()

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(c.Request.Context(), path)
		}

		generation := rc.currentGeneration()

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Header("X-Cache", "MISS")

		c.Next()

		status := writer.Status()

		if status < 200 || status >= 300 {
			return
		}

		stored := rc.store(generation, cacheKey, CachedResponse{
			StatusCode: status,
			Headers:    cloneHeaders(writer.Header()),
			Body:       writer.body.Bytes(),
			Timestamp:  time.Now(),
		}, config.TTL)

		if !stored {
			rc.logger.Debug("Skipped caching response older than last write", zap.String("path", path))
		}
	}
}

func (rc *ResponseCache) currentGeneration() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return rc.generation
}

// store keeps the response only if no write completed since generation was read.
func (rc *ResponseCache) store(generation uint64, key string, resp CachedResponse, ttl time.Duration) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if generation != rc.generation {
		return false
	}

	rc.cache.Set(key, resp, ttl)

	return true
}

func (rc *ResponseCache) invalidateOnSuccess(c *gin.Context) {
	c.Next()

	status := c.Writer.Status()

	if status >= 200 && status < 300 {
		rc.InvalidateAllCache()
	}
}

func (rc *ResponseCache) generateCacheKey(c *gin.Context, path string) string {
	if c.Request.URL.RawQuery != "" {
		return fmt.Sprintf("cache:%s?%s", path, c.Request.URL.RawQuery)
	}

	return "cache:" + path
}

func (rc *ResponseCache) InvalidateAllCache() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.generation++

	if rc.cache.ItemCount() == 0 {
		return
	}

	rc.cache.Flush()
	rc.logger.Debug("Response cache invalidated")
}

func (rc *ResponseCache) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"active_entries": rc.cache.ItemCount(),
		"configs":        len(rc.config),
	}
}

// requestIDKey is set per request and must not be replayed from a cached entry.
var requestIDKey = http.CanonicalHeaderKey(middleware.RequestIDHeader)

func cloneHeaders(headers map[string][]string) map[string][]string {
	out := make(map[string][]string, len(headers))

	for key, values := range headers {
		if strings.HasPrefix(key, "X-Cache") || key == "Content-Length" || key == requestIDKey {
			continue
		}
		out[key] = append([]string(nil), values...)
	}

	return out
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
