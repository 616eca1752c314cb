package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/port"
	tel "thingstodo/internal/core/telemetry"
	"thingstodo/pkg/tracing"
)

const (
	DefaultBaseURL = "https://api.pexels.com"
	DefaultTimeout = 10 * time.Second

	maxQueryRunes = 60
)

type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client looks up one square photo per title. A client built without an
// API key is disabled and never touches the network.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	telemetry  port.Telemetry
	logger     *slog.Logger
}

type searchResponse struct {
	Photos []photo `json:"photos"`
}

type photo struct {
	Alt string `json:"alt"`
	Src struct {
		Original string `json:"original"`
	} `json:"src"`
}

func NewClient(opts Options, telemetry port.Telemetry, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With("component", "pexels")

	if opts.APIKey == "" {
		logger.Warn("PEXELS_API_KEY is not set, image enrichment disabled")
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		telemetry: telemetry,
		logger:    logger,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

func (c *Client) Search(ctx context.Context, title string) *domain.Image {
	if !c.Enabled() {
		c.telemetry.RecordEnrichment(ctx, port.EnrichmentDisabled)
		return nil
	}

	ctx, span := tracing.CreateChildSpan(ctx, "pexels.Search", []attribute.KeyValue{
		attribute.String("peer.service", "pexels"),
	})
	defer span.End()

	endpoint := c.searchURL(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		tracing.AddSpanError(span, err)
		c.logger.ErrorContext(ctx, "Error building image search request", "error", err)
		c.telemetry.RecordEnrichment(ctx, port.EnrichmentNetworkFail)
		return nil
	}

	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.AddSpanError(span, err)
		c.logger.ErrorContext(ctx, "Error fetching image", "error", err)
		c.telemetry.RecordEnrichment(ctx, port.EnrichmentNetworkFail)
		return nil
	}
	defer resp.Body.Close()

	tracing.AddHTTPAttributes(span, req.Method, c.baseURL+"/v1/search", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.ErrorContext(ctx, "Image provider returned an error",
			"status", resp.StatusCode,
			"reason", http.StatusText(resp.StatusCode))
		c.telemetry.RecordEnrichment(ctx, port.EnrichmentProviderFail)
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var body searchResponse

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		tracing.AddSpanError(span, err)
		c.logger.ErrorContext(ctx, "Error decoding image search response", "error", err)
		c.telemetry.RecordEnrichment(ctx, port.EnrichmentNetworkFail)
		return nil
	}

	if len(body.Photos) == 0 {
		c.telemetry.RecordEnrichment(ctx, port.EnrichmentEmpty)
		return nil
	}

	first := body.Photos[0]

	c.telemetry.RecordEnrichment(ctx, port.EnrichmentFound)

	return &domain.Image{URL: first.Src.Original, Alt: first.Alt}
}

func (c *Client) searchURL(title string) string {
	params := url.Values{}
	params.Set("query", Query(title))
	params.Set("orientation", "square")
	params.Set("per_page", "1")

	return fmt.Sprintf("%s/v1/search?%s", c.baseURL, params.Encode())
}

// Query returns the first 60 characters of title.
func Query(title string) string {
	runes := []rune(title)

	if len(runes) > maxQueryRunes {
		return string(runes[:maxQueryRunes])
	}

	return title
}
