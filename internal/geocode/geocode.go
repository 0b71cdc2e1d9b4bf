// Package geocode resolves (city, state) pairs to coordinates through
// Nominatim, behind a two-layer cache. Results outside Virginia are folded
// to a representative in-state point because the downstream corpus is
// Virginia-only and out-of-state hits are nearly always geocoder noise.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

// Virginia bounding box.
const (
	vaLatMin = 36.5
	vaLatMax = 39.5
	vaLonMin = -83.7
	vaLonMax = -75.2
)

// Richmond, the fallback point for out-of-state geocoder results.
const (
	RichmondLat = 37.5407
	RichmondLon = -77.4360
)

const userAgent = "guardian_parser"

// Result is a resolved location. City and State echo the inputs unless the
// Virginia override replaced them.
type Result struct {
	Lat   float64
	Lon   float64
	City  string
	State string
	OK    bool
}

type cacheEntry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Client geocodes through Nominatim with an in-memory cache in front and an
// optional JSON file behind it. Nominatim's usage policy allows one request
// per second, enforced with a limiter.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	mem       *gocache.Cache
	cachePath string
	cacheOnly bool
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-default Nominatim instance.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithCacheFile loads the JSON cache at path on construction; Flush writes
// it back.
func WithCacheFile(path string) Option {
	return func(c *Client) { c.cachePath = path }
}

// CacheOnly disables network lookups; only cached entries resolve.
func CacheOnly() Option {
	return func(c *Client) { c.cacheOnly = true }
}

func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: "https://nominatim.openstreetmap.org",
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		mem:     gocache.New(gocache.NoExpiration, 0),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cachePath != "" {
		c.loadCacheFile()
	}
	return c
}

// InVirginia reports whether the coordinates fall inside the state's
// bounding box.
func InVirginia(lat, lon float64) bool {
	return lat >= vaLatMin && lat <= vaLatMax && lon >= vaLonMin && lon <= vaLonMax
}

func cacheKey(city, state, extra string) string {
	return strings.ToLower(strings.TrimSpace(city)) + "|" + strings.ToLower(strings.TrimSpace(state)) + "|" + extra
}

// Lookup resolves a (city, state) pair to coordinates. Only in-Virginia
// results are cached, so bad geocodes get another chance on the next run.
func (c *Client) Lookup(ctx context.Context, city, state, cacheKeyExtra string) (lat, lon float64, ok bool) {
	if city == "" && state == "" {
		return 0, 0, false
	}
	key := cacheKey(city, state, cacheKeyExtra)
	if v, found := c.mem.Get(key); found {
		entry := v.(cacheEntry)
		return entry.Lat, entry.Lon, true
	}
	if c.cacheOnly {
		return 0, 0, false
	}

	lat, lon, ok = c.query(ctx, city, state)
	if !ok {
		return 0, 0, false
	}
	lat = record.ClampLat(lat)
	lon = record.ClampLon(lon)
	if InVirginia(lat, lon) {
		c.mem.Set(key, cacheEntry{Lat: lat, Lon: lon}, gocache.NoExpiration)
	}
	return lat, lon, true
}

// LookupWithOverride resolves a pair and folds out-of-Virginia results to
// Richmond, rewriting the returned city/state so the record stays
// self-consistent with its coordinates.
func (c *Client) LookupWithOverride(ctx context.Context, city, state, cacheKeyExtra string) Result {
	if city == "" && state == "" {
		return Result{}
	}
	lat, lon, ok := c.Lookup(ctx, city, state, cacheKeyExtra)
	if !ok {
		return Result{}
	}
	if InVirginia(lat, lon) {
		return Result{Lat: lat, Lon: lon, City: city, State: state, OK: true}
	}

	c.logger.Debug("geocode.va_override",
		slog.String("city", city),
		slog.String("state", state),
		slog.Float64("lat", lat),
		slog.Float64("lon", lon))
	c.mem.Set(cacheKey("Richmond", "Virginia", cacheKeyExtra),
		cacheEntry{Lat: RichmondLat, Lon: RichmondLon}, gocache.NoExpiration)
	return Result{Lat: RichmondLat, Lon: RichmondLon, City: "Richmond", State: "Virginia", OK: true}
}

type nominatimHit struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) query(ctx context.Context, city, state string) (float64, float64, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, 0, false
	}

	var parts []string
	for _, p := range []string{city, state, "USA"} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	q := url.Values{}
	q.Set("q", strings.Join(parts, ", "))
	q.Set("format", "json")
	q.Set("limit", "1")

	reqURL := c.baseURL + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, 0, false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("geocode.request_failed", slog.String("query", q.Get("q")), slog.Any("error", err))
		return 0, 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("geocode.bad_status", slog.String("status", resp.Status))
		return 0, 0, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, false
	}
	var hits []nominatimHit
	if err := json.Unmarshal(body, &hits); err != nil || len(hits) == 0 {
		return 0, 0, false
	}

	var lat, lon float64
	if _, err := fmt.Sscanf(hits[0].Lat, "%f", &lat); err != nil {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(hits[0].Lon, "%f", &lon); err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// Seed inserts a cache entry directly. Used by tests and cache priming.
func (c *Client) Seed(city, state, extra string, lat, lon float64) {
	c.mem.Set(cacheKey(city, state, extra), cacheEntry{Lat: lat, Lon: lon}, gocache.NoExpiration)
}

func (c *Client) loadCacheFile() {
	raw, err := os.ReadFile(c.cachePath)
	if err != nil {
		return
	}
	var entries map[string]cacheEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn("geocode.cache_load_failed", slog.String("path", c.cachePath), slog.Any("error", err))
		return
	}
	for k, v := range entries {
		c.mem.Set(k, v, gocache.NoExpiration)
	}
}

// Flush writes the in-memory cache to the configured cache file.
func (c *Client) Flush() error {
	if c.cachePath == "" {
		return nil
	}
	entries := map[string]cacheEntry{}
	for k, item := range c.mem.Items() {
		entries[k] = item.Object.(cacheEntry)
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding geocode cache: %w", err)
	}
	if err := os.WriteFile(c.cachePath, raw, 0o644); err != nil {
		return fmt.Errorf("writing geocode cache: %w", err)
	}
	return nil
}
