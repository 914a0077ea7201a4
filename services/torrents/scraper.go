package torrents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"streamscout/models"
)

const (
	apibayDefaultBaseURL = "https://apibay.org"
	apibayTimeout        = 15 * time.Second

	// torrentCap bounds the torrent contribution per search response.
	torrentCap = 5
)

// Scraper queries the apibay JSON search endpoint for torrent releases.
// Policy decides whether it runs at all: a disabled scraper returns an empty
// list without touching the network.
type Scraper struct {
	baseURL    string
	enabled    bool
	httpClient *http.Client
}

// NewScraper constructs an apibay scraper. An empty baseURL falls back to the
// public endpoint; a nil client gets a default with a bounded timeout.
func NewScraper(baseURL string, enabled bool, client *http.Client) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: apibayTimeout}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = apibayDefaultBaseURL
	}
	return &Scraper{
		baseURL:    baseURL,
		enabled:    enabled,
		httpClient: client,
	}
}

// Enabled reports whether the torrent facet is switched on.
func (s *Scraper) Enabled() bool {
	return s.enabled
}

// apibayItem is one search hit as apibay reports it. Numeric fields arrive as
// strings.
type apibayItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	InfoHash string `json:"info_hash"`
	Seeders  string `json:"seeders"`
	Leechers string `json:"leechers"`
	Size     string `json:"size"`
}

// Search returns up to five torrent sources for a title, deduplicated by info
// hash and ordered as the index returns them (seeders descending). Failures
// degrade to an empty list; the torrent facet never blocks a search.
func (s *Scraper) Search(ctx context.Context, title string, year *int) []models.TorrentSource {
	if !s.enabled {
		return []models.TorrentSource{}
	}

	query := strings.TrimSpace(title)
	if query == "" {
		return []models.TorrentSource{}
	}
	if year != nil {
		query = fmt.Sprintf("%s %d", query, *year)
	}

	items, err := s.search(ctx, query)
	if err != nil {
		log.Printf("[torrents] search failed for %q: %v", query, err)
		return []models.TorrentSource{}
	}

	// Retry without the year when a dated query comes back empty; releases
	// are often named without one.
	if len(items) == 0 && year != nil {
		items, err = s.search(ctx, strings.TrimSpace(title))
		if err != nil {
			log.Printf("[torrents] retry without year failed for %q: %v", title, err)
			return []models.TorrentSource{}
		}
	}

	sources := make([]models.TorrentSource, 0, torrentCap)
	seen := make(map[string]struct{})
	for _, item := range items {
		infoHash := strings.ToLower(strings.TrimSpace(item.InfoHash))
		if infoHash == "" || item.ID == "0" {
			continue
		}
		if _, dup := seen[infoHash]; dup {
			continue
		}
		seen[infoHash] = struct{}{}

		sources = append(sources, models.TorrentSource{
			Title:    item.Name,
			Magnet:   buildMagnetFromHash(infoHash, item.Name),
			Size:     humanSize(item.Size),
			Seeds:    atoiOrZero(item.Seeders),
			Peers:    atoiOrZero(item.Leechers),
			Provider: "apibay",
		})
		if len(sources) == torrentCap {
			break
		}
	}
	return sources
}

func (s *Scraper) search(ctx context.Context, query string) ([]apibayItem, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("cat", "0")
	endpoint := fmt.Sprintf("%s/q.php?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; streamscout/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apibay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("apibay returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var items []apibayItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("parse apibay response: %w", err)
	}

	// The index signals "no results" with a single placeholder row.
	if len(items) == 1 && items[0].ID == "0" {
		return nil, nil
	}
	return items, nil
}

// buildMagnetFromHash assembles a magnet URI from an info hash and display name.
func buildMagnetFromHash(infoHash, title string) string {
	return fmt.Sprintf("magnet:?xt=urn:btih:%s&dn=%s", infoHash, url.QueryEscape(title))
}

// humanSize renders an apibay byte-count string as a binary-unit size.
func humanSize(raw string) string {
	bytes, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || bytes <= 0 {
		return "N/A"
	}

	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.2f %s", size, units[unit])
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
