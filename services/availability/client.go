package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"streamscout/models"
)

const (
	defaultBaseURL = "https://api.watchmode.com/v1"
	defaultTimeout = 8 * time.Second

	// freeSourceCap bounds the free-source contribution per title.
	freeSourceCap = 5
	// pricingCap bounds the normalized pricing list per title.
	pricingCap = 15
)

// Client talks to the Watchmode availability API. The API key is optional:
// an unconfigured client contributes empty free-source lists and stub pricing
// instead of failing.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// NewClient constructs an availability client. A nil httpc gets a default
// client with a bounded timeout.
func NewClient(apiKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultBaseURL,
		httpc:   httpc,
	}
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// rawSource is one availability offer as the provider reports it.
type rawSource struct {
	Name        string   `json:"name"`
	Source      string   `json:"source"`
	DisplayName string   `json:"display_name"`
	Type        string   `json:"type"`
	SourceType  string   `json:"source_type"`
	Price       *float64 `json:"price"`
	HDPrice     *float64 `json:"hd_price"`
	SDPrice     *float64 `json:"sd_price"`
	Currency    string   `json:"currency"`
	Quality     string   `json:"quality"`
	Format      string   `json:"format"`
	WebURL      string   `json:"web_url"`
	URL         string   `json:"url"`
}

// isFree reports whether the offer costs nothing to watch: explicitly free or
// TV-everywhere types, or a zero price (HD price standing in when the base
// price is absent).
func (s rawSource) isFree() bool {
	switch strings.ToLower(s.Type) {
	case "free", "tve":
		return true
	}
	price := s.Price
	if price == nil {
		price = s.HDPrice
	}
	return price != nil && *price == 0
}

// FreeSources returns up to five unique free-streaming URLs for a title,
// in provider order. Unconfigured clients and upstream failures both yield
// an empty list so the search response stays well formed.
func (c *Client) FreeSources(ctx context.Context, mediaType models.MediaType, titleID int64) []string {
	sources, err := c.fetchSources(ctx, mediaType, titleID)
	if err != nil {
		log.Printf("[availability] free source lookup failed: %v", err)
		return []string{}
	}

	urls := make([]string, 0, freeSourceCap)
	seen := make(map[string]struct{})
	for _, source := range sources {
		if !source.isFree() || source.WebURL == "" {
			continue
		}
		if _, dup := seen[source.WebURL]; dup {
			continue
		}
		seen[source.WebURL] = struct{}{}
		urls = append(urls, source.WebURL)
		if len(urls) == freeSourceCap {
			break
		}
	}
	return urls
}

// Pricing returns the normalized availability offers for a title, capped at
// fifteen entries. When the upstream is unconfigured, fails, or has nothing,
// a deterministic stub list is returned so the pricing surface always renders.
func (c *Client) Pricing(ctx context.Context, mediaType models.MediaType, titleID int64) []models.PriceEntry {
	sources, err := c.fetchSources(ctx, mediaType, titleID)
	if err != nil {
		log.Printf("[availability] pricing lookup failed, using stub data: %v", err)
		return stubPricing(titleID)
	}

	entries := make([]models.PriceEntry, 0, pricingCap)
	for _, source := range sources {
		entry := normalizePriceEntry(source)
		if entry.URL == "" {
			continue
		}
		entries = append(entries, entry)
		if len(entries) == pricingCap {
			break
		}
	}
	if len(entries) == 0 {
		return stubPricing(titleID)
	}
	return entries
}

func (c *Client) fetchSources(ctx context.Context, mediaType models.MediaType, titleID int64) ([]rawSource, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("availability api key not configured")
	}

	segment := "movie"
	if mediaType == models.MediaTypeSeries {
		segment = "tv"
	}
	endpoint := fmt.Sprintf("%s/title/%s-%d/sources/?apiKey=%s", c.baseURL, segment, titleID, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sources []rawSource
	if err := json.NewDecoder(resp.Body).Decode(&sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return sources, nil
}

func normalizePriceEntry(source rawSource) models.PriceEntry {
	name := source.Name
	if name == "" {
		name = source.Source
	}
	if name == "" {
		name = source.DisplayName
	}
	if name == "" {
		name = "Unknown Provider"
	}

	offerType := source.Type
	if offerType == "" {
		offerType = source.SourceType
	}
	if offerType == "" {
		offerType = "unknown"
	}

	price := source.Price
	if price == nil {
		price = source.HDPrice
	}
	if price == nil {
		price = source.SDPrice
	}

	currency := source.Currency
	if currency == "" {
		currency = "USD"
	}

	quality := source.Quality
	if quality == "" {
		quality = source.Format
	}

	offerURL := source.WebURL
	if offerURL == "" {
		offerURL = source.URL
	}

	return models.PriceEntry{
		ProviderName: name,
		Type:         strings.ToLower(offerType),
		Price:        price,
		Currency:     currency,
		Quality:      quality,
		URL:          offerURL,
	}
}

// stubPricing is the fallback offer list used when no live pricing exists.
func stubPricing(titleID int64) []models.PriceEntry {
	free := 0.0
	rental := 3.99
	return []models.PriceEntry{
		{
			ProviderName: "Neon Stream",
			Type:         "subscription",
			Price:        &free,
			Currency:     "USD",
			Quality:      "HD",
			URL:          fmt.Sprintf("https://stream.example.com/title/%d", titleID),
		},
		{
			ProviderName: "CyberRent",
			Type:         "rental",
			Price:        &rental,
			Currency:     "USD",
			Quality:      "4K",
			URL:          fmt.Sprintf("https://rent.example.com/title/%d", titleID),
		},
	}
}
