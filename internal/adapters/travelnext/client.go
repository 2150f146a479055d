package travelnext

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"delai_travel/internal/adapters/observability"
	"delai_travel/internal/domain"
)

// Client loads the hotel inventory from a TravelNext-style search API, with a
// local snapshot file as fallback. Load never returns an error: a total
// failure yields an empty catalog and downstream code degrades gracefully.
type Client struct {
	url          string
	user         string
	pass         string
	snapshotPath string
	hc           *http.Client
	rl           *rate.Limiter
	cache        domain.Cache
	cacheTTLSec  int
	log          zerolog.Logger
}

type Option func(*Client)

// WithCache shares loaded catalogs across requests, keyed by city hint.
func WithCache(c domain.Cache, ttlSec int) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTLSec = ttlSec
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

func New(url, user, pass, snapshotPath string, rps int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 5
	}
	cl := &Client{
		url:          url,
		user:         user,
		pass:         pass,
		snapshotPath: snapshotPath,
		hc:           &http.Client{Timeout: 30 * time.Second},
		rl:           rate.NewLimiter(rate.Limit(rps), rps),
		log:          zerolog.Nop(),
	}
	for _, o := range opts {
		o(cl)
	}
	return cl
}

const defaultCity = "Manila"

// Load fetches the inventory for the hinted city. Order: cache, live API,
// snapshot file, empty slice.
func (c *Client) Load(ctx context.Context, cityHint string) []domain.HotelRecord {
	city := strings.TrimSpace(cityHint)
	if city == "" {
		city = defaultCity
	}
	key := "catalog:" + strings.ToLower(city)

	if c.cache != nil {
		var cached []domain.HotelRecord
		if ok, err := c.cache.Get(ctx, key, &cached); err == nil && ok {
			return cached
		}
	}

	records, err := c.fetch(ctx, city)
	if err != nil {
		c.log.Warn().Err(err).Str("city", city).Msg("inventory fetch failed, trying snapshot")
		records, err = c.loadSnapshot()
		if err != nil {
			c.log.Warn().Err(err).Msg("snapshot load failed, continuing with empty catalog")
			return nil
		}
	}

	if c.cache != nil && len(records) > 0 {
		if err := c.cache.Set(ctx, key, records, c.cacheTTLSec); err != nil {
			c.log.Debug().Err(err).Msg("catalog cache set failed")
		}
	}
	return records
}

type occupancy struct {
	RoomNo   int   `json:"room_no"`
	Adult    int   `json:"adult"`
	Child    int   `json:"child"`
	ChildAge []int `json:"child_age"`
}

type searchRequest struct {
	UserID       string      `json:"user_id"`
	UserPassword string      `json:"user_password"`
	Access       string      `json:"access"`
	IPAddress    string      `json:"ip_address"`
	Checkin      string      `json:"checkin"`
	Checkout     string      `json:"checkout"`
	CityName     string      `json:"city_name"`
	CountryName  string      `json:"country_name"`
	Occupancy    []occupancy `json:"occupancy"`
	Currency     string      `json:"requiredCurrency"`
}

type searchResponse struct {
	Status      json.RawMessage  `json:"status"`
	Itineraries []map[string]any `json:"itineraries"`
}

var errNoItineraries = errors.New("travelnext: response carried no itineraries")

// fetch issues the search POST with retries on 429 and transient 5xx,
// honoring Retry-After when provided.
func (c *Client) fetch(ctx context.Context, city string) ([]domain.HotelRecord, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	checkin := time.Now().AddDate(0, 0, 1)
	body, err := json.Marshal(searchRequest{
		UserID:       c.user,
		UserPassword: c.pass,
		Access:       "Test",
		IPAddress:    "127.0.0.1",
		Checkin:      checkin.Format("2006-01-02"),
		Checkout:     checkin.AddDate(0, 0, 1).Format("2006-01-02"),
		CityName:     city,
		CountryName:  "Philippines",
		Occupancy:    []occupancy{{RoomNo: 1, Adult: 2, Child: 0, ChildAge: []int{0}}},
		Currency:     "PHP",
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("travelnext", "hotel_search", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("travelnext", "hotel_search", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			var out searchResponse
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("decode search response: %w", err)
			}
			if len(out.Itineraries) == 0 {
				return nil, errNoItineraries
			}
			return mapRecords(out.Itineraries), nil

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

// loadSnapshot reads a static JSON file of the same shape the API returns.
func (c *Client) loadSnapshot() ([]domain.HotelRecord, error) {
	if c.snapshotPath == "" {
		return nil, errors.New("no snapshot path configured")
	}
	raw, err := os.ReadFile(c.snapshotPath)
	if err != nil {
		return nil, err
	}
	var out searchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(out.Itineraries) == 0 {
		return nil, errNoItineraries
	}
	return mapRecords(out.Itineraries), nil
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
