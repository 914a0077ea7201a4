package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamscout/models"
)

const (
	defaultBaseURL = "https://api.tvmaze.com"
	defaultTimeout = 8 * time.Second

	sourceName = "TVmaze"

	// entryCap bounds a single day's schedule payload.
	entryCap = 50

	defaultCountry = "RS"
)

// Client fetches broadcast schedules from TVMaze. No credentials required.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient constructs a schedule client. A nil httpc gets a default client
// with a bounded timeout.
func NewClient(httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: defaultBaseURL, httpc: httpc}
}

// rawEntry is one broadcast slot as the provider reports it.
type rawEntry struct {
	Airtime string `json:"airtime"`
	Airdate string `json:"airdate"`
	Show    struct {
		Name    string `json:"name"`
		Network *struct {
			Name string `json:"name"`
		} `json:"network"`
		WebChannel *struct {
			Name string `json:"name"`
		} `json:"webChannel"`
	} `json:"show"`
}

// ForDay returns the broadcast schedule for one country and date, capped at
// fifty entries. An empty country defaults to RS; an empty date defaults to
// today (UTC).
func (c *Client) ForDay(ctx context.Context, country, date string) (models.Schedule, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		country = defaultCountry
	}
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	params := url.Values{}
	params.Set("country", country)
	params.Set("date", date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/schedule?"+params.Encode(), nil)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("schedule request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Schedule{}, fmt.Errorf("schedule returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []rawEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return models.Schedule{}, fmt.Errorf("decode schedule: %w", err)
	}

	if len(raw) > entryCap {
		raw = raw[:entryCap]
	}

	entries := make([]models.ScheduleEntry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, models.ScheduleEntry{
			Airtime: nullableString(firstOf(e.Airtime, e.Airdate)),
			Show:    nullableString(e.Show.Name),
			Channel: nullableString(channelName(e)),
		})
	}

	return models.Schedule{
		Country: country,
		Date:    date,
		Source:  sourceName,
		Entries: entries,
	}, nil
}

func channelName(e rawEntry) string {
	if e.Show.Network != nil && e.Show.Network.Name != "" {
		return e.Show.Network.Name
	}
	if e.Show.WebChannel != nil {
		return e.Show.WebChannel.Name
	}
	return ""
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
