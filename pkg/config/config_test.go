package config

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	RegisterTestingT(t)

	cfg := LoadFrom(lookupFrom(nil))

	Expect(cfg.Port).To(Equal("8080"))
	Expect(cfg.DatabaseDriver).To(Equal(DriverSQLite))
	Expect(cfg.DatabasePath).To(Equal("todos.db"))
	Expect(cfg.ImageSearchTimeout).To(Equal(10 * time.Second))
	Expect(cfg.CacheEnabled).To(BeTrue())
	Expect(cfg.CacheTTL).To(Equal(3 * time.Second))
	Expect(cfg.CORSAllowedOrigins).To(Equal([]string{"*"}))
	Expect(cfg.PexelsAPIKey).To(BeEmpty())
	Expect(cfg.UsePostgres()).To(BeFalse())
}

func TestLoad_Overrides(t *testing.T) {
	RegisterTestingT(t)

	cfg := LoadFrom(lookupFrom(map[string]string{
		"PORT":                 "3000",
		"GIN_MODE":             "release",
		"DATABASE_DRIVER":      "Postgres",
		"DATABASE_URL":         "postgres://localhost/todos",
		"PEXELS_API_KEY":       " key ",
		"IMAGE_SEARCH_TIMEOUT": "2s",
		"CACHE_ENABLED":        "false",
		"CORS_ALLOWED_ORIGINS": "http://localhost:3000, https://todo.example.com,",
		"TODO_API_URL":         "http://api:8080/",
	}))

	Expect(cfg.Port).To(Equal("3000"))
	Expect(cfg.UsePostgres()).To(BeTrue())
	Expect(cfg.PexelsAPIKey).To(Equal("key"))
	Expect(cfg.ImageSearchTimeout).To(Equal(2 * time.Second))
	Expect(cfg.CacheEnabled).To(BeFalse())
	Expect(cfg.CORSAllowedOrigins).To(Equal([]string{"http://localhost:3000", "https://todo.example.com"}))
	Expect(cfg.APIURL).To(Equal("http://api:8080"))
	Expect(cfg.Environment).To(Equal("production"))
}

func TestLoad_MalformedValuesKeepDefaults(t *testing.T) {
	cfg := LoadFrom(lookupFrom(map[string]string{
		"CACHE_ENABLED":        "maybe",
		"CACHE_TTL":            "-1s",
		"IMAGE_SEARCH_TIMEOUT": "soon",
	}))

	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 3*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.ImageSearchTimeout)
}
