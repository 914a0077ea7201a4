package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"streamscout/models"
)

const (
	defaultBaseURL   = "https://api.themoviedb.org/3"
	imageBaseURL     = "https://image.tmdb.org/t/p/w500"
	referenceBaseURL = "https://www.themoviedb.org"

	defaultTimeout = 8 * time.Second

	// searchResultCap bounds free-text search output.
	searchResultCap = 8

	personCacheSize = 256
	personCacheTTL  = 24 * time.Hour
)

// ErrNotConfigured is returned when the catalog bearer token is missing.
// Unlike the other providers, the catalog is mandatory for search.
var ErrNotConfigured = errors.New("catalog bearer token not configured")

// Client talks to the TMDB API: free-text multi search, discover-by-filter,
// person search and trending feeds.
type Client struct {
	bearer   string
	baseURL  string
	language string
	httpc    *http.Client

	// personCache maps lowercased person names to provider IDs. Bounded and
	// TTL-evicted; a miss just means one extra upstream lookup.
	personCache *expirable.LRU[string, int64]
}

// NewClient constructs a catalog client. A nil httpc gets a default client
// with a bounded timeout so one slow upstream cannot stall a whole request.
func NewClient(bearer, language string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	if language == "" {
		language = "en-US"
	}
	return &Client{
		bearer:      strings.TrimSpace(bearer),
		baseURL:     defaultBaseURL,
		language:    language,
		httpc:       httpc,
		personCache: expirable.NewLRU[string, int64](personCacheSize, nil, personCacheTTL),
	}
}

// IsConfigured reports whether the mandatory bearer token is present.
func (c *Client) IsConfigured() bool {
	return c.bearer != ""
}

// rawItem is the subset of a TMDB result consumed by the normalizer.
type rawItem struct {
	ID            int64   `json:"id"`
	MediaType     string  `json:"media_type"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	VoteAverage   float64 `json:"vote_average"`
}

type resultsEnvelope struct {
	Results []rawItem `json:"results"`
}

// SearchMulti performs a free-text search across movies and series, dropping
// person hits and anything the normalizer rejects. Output is capped at 8.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]models.CanonicalTitle, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", c.language)
	params.Set("page", "1")

	var payload resultsEnvelope
	if err := c.get(ctx, "/search/multi", params, &payload); err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	titles := make([]models.CanonicalTitle, 0, searchResultCap)
	for _, raw := range payload.Results {
		mt := raw.MediaType
		if mt == "" {
			mt = "movie"
		}
		if mt != "movie" && mt != "tv" {
			continue
		}
		raw.MediaType = mt
		if title := normalizeItem(raw, query); title != nil {
			titles = append(titles, *title)
		}
		if len(titles) == searchResultCap {
			break
		}
	}
	return titles, nil
}

// DiscoverFilters are the structured constraints for filter-driven discovery.
type DiscoverFilters struct {
	GenreID   int
	Year      int
	MinRating float64
	PersonIDs []int64
}

// Discover queries the discovery endpoint for one media type. Person
// constraints apply to movie discovery only; the upstream has no person
// filter for series.
func (c *Client) Discover(ctx context.Context, mediaType models.MediaType, f DiscoverFilters) ([]models.CanonicalTitle, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	segment := providerSegment(mediaType)
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("language", c.language)
	params.Set("page", "1")
	params.Set("sort_by", "popularity.desc")

	if f.GenreID > 0 {
		params.Set("with_genres", strconv.Itoa(f.GenreID))
	}
	if f.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.Year > 0 {
		if mediaType == models.MediaTypeSeries {
			params.Set("first_air_date_year", strconv.Itoa(f.Year))
		} else {
			params.Set("primary_release_year", strconv.Itoa(f.Year))
		}
	}
	if len(f.PersonIDs) > 0 && mediaType == models.MediaTypeMovie {
		ids := make([]string, 0, len(f.PersonIDs))
		for _, id := range f.PersonIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		params.Set("with_people", strings.Join(ids, ","))
	}

	var payload resultsEnvelope
	if err := c.get(ctx, "/discover/"+segment, params, &payload); err != nil {
		return nil, fmt.Errorf("catalog discover %s: %w", segment, err)
	}

	titles := make([]models.CanonicalTitle, 0, len(payload.Results))
	for _, raw := range payload.Results {
		raw.MediaType = segment
		if title := normalizeItem(raw, ""); title != nil {
			titles = append(titles, *title)
		}
	}
	return titles, nil
}

// ResolvePersonID maps a free-text person name to a provider ID, caching hits
// by lowercased name. Returns 0 when no match exists.
func (c *Client) ResolvePersonID(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	if !c.IsConfigured() {
		return 0, ErrNotConfigured
	}

	key := strings.ToLower(name)
	if id, ok := c.personCache.Get(key); ok {
		return id, nil
	}

	params := url.Values{}
	params.Set("query", name)
	params.Set("include_adult", "false")
	params.Set("page", "1")

	var payload struct {
		Results []struct {
			ID int64 `json:"id"`
		} `json:"results"`
	}
	if err := c.get(ctx, "/search/person", params, &payload); err != nil {
		return 0, fmt.Errorf("catalog person search: %w", err)
	}
	if len(payload.Results) == 0 {
		return 0, nil
	}

	id := payload.Results[0].ID
	c.personCache.Add(key, id)
	return id, nil
}

// Trending returns the trending feed for one media type ("movie" or "tv")
// and period ("day" or "week").
func (c *Client) Trending(ctx context.Context, segment, period, language string) ([]models.TrendingItem, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if segment != "movie" && segment != "tv" {
		return nil, fmt.Errorf("unsupported trending segment: %s", segment)
	}
	if period != "week" {
		period = "day"
	}
	if language == "" {
		language = c.language
	}

	params := url.Values{}
	params.Set("language", language)

	var payload resultsEnvelope
	if err := c.get(ctx, "/trending/"+segment+"/"+period, params, &payload); err != nil {
		return nil, fmt.Errorf("catalog trending %s: %w", segment, err)
	}

	items := make([]models.TrendingItem, 0, len(payload.Results))
	for _, raw := range payload.Results {
		name := firstNonEmpty(raw.Title, raw.Name, raw.OriginalTitle, raw.OriginalName)
		if segment == "tv" {
			name = firstNonEmpty(raw.Name, raw.Title, raw.OriginalName, raw.OriginalTitle)
		}
		items = append(items, models.TrendingItem{ID: raw.ID, Title: name, Rating: raw.VoteAverage})
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[catalog] %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
