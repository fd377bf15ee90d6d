package horizons

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"orbitflow/config"
	"orbitflow/logger"
)

// Client issues VECTORS queries against the Horizons API. Requests are plain
// GETs; Horizons reports everything, including its own errors, as text in the
// response body.
type Client struct {
	config     *config.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Log
}

// NewClient creates a Horizons client with a pooled transport and an optional
// request-rate limiter. Horizons is a shared public service; the limiter keeps
// deep bisection recursions from bursting requests at it.
func NewClient(cfg *config.Config) *Client {
	log := logger.GetLogger()

	pool := cfg.Source.Horizons.ConnectionPool
	transport := &http.Transport{
		MaxIdleConns:        pool.MaxIdleConns,
		MaxIdleConnsPerHost: pool.MaxIdleConns,
		MaxConnsPerHost:     pool.MaxConnsPerHost,
		IdleConnTimeout:     pool.IdleConnTimeout,
		DisableCompression:  false,
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.Source.Horizons.Timeout,
	}

	var limiter *rate.Limiter
	if rl := cfg.Source.Horizons.RateLimit; rl.RequestsPerSecond > 0 {
		burst := rl.BurstSize
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), burst)
	}

	client := &Client{
		config:     cfg,
		httpClient: httpClient,
		limiter:    limiter,
		log:        log,
	}

	log.WithComponent("horizons_client").WithFields(logger.Fields{
		"url":                cfg.Source.Horizons.URL,
		"timeout":            cfg.Source.Horizons.Timeout,
		"max_idle_conns":     pool.MaxIdleConns,
		"max_conns_per_host": pool.MaxConnsPerHost,
	}).Info("horizons client initialized")

	return client
}

// BuildURL assembles the query for one VECTORS retrieval. Vectors are
// requested Sun-centered in the J2000 ecliptic plane for a stable 2D
// projection, CSV-formatted, in km and km/s.
func (c *Client) BuildURL(command, startTime, stopTime, stepSize string) string {
	params := url.Values{}
	params.Set("format", "text")
	params.Set("COMMAND", quote(command))
	params.Set("OBJ_DATA", quote("NO"))
	params.Set("MAKE_EPHEM", quote("YES"))
	params.Set("EPHEM_TYPE", quote("VECTORS"))
	params.Set("CENTER", quote("500@10")) // Sun center
	params.Set("START_TIME", quote(startTime))
	params.Set("STOP_TIME", quote(stopTime))
	params.Set("STEP_SIZE", quote(stepSize))
	params.Set("VEC_CORR", quote("NONE"))
	params.Set("VEC_LABELS", quote("NO"))
	params.Set("CSV_FORMAT", quote("YES"))
	params.Set("REF_PLANE", quote("ECLIPTIC"))
	params.Set("REF_SYSTEM", quote("J2000"))
	params.Set("OUT_UNITS", quote("KM-S"))
	params.Set("VEC_DELTA_T", quote("NO"))

	return fmt.Sprintf("%s?%s", c.config.Source.Horizons.URL, params.Encode())
}

// Horizons expects single-quoted parameter values.
func quote(v string) string {
	return "'" + v + "'"
}

// fetchText performs one retrieval and returns the body as text. Transport
// failures are the only errors here; Horizons-level errors arrive inside a
// successful body and are classified by the caller.
func (c *Client) fetchText(ctx context.Context, reqURL string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read horizons response: %w", err)
	}

	log := c.log.WithComponent("horizons_client")
	logger.LogPerformanceEntry(log, "horizons_client", "api_request", time.Since(start), logger.Fields{
		"bytes": len(raw),
	})
	logger.IncrementRequest(len(raw))

	return string(raw), nil
}
