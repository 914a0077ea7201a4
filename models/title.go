package models

// MediaType identifies the content family of a catalog title.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// CanonicalTitle is the normalized, provider-agnostic representation of a
// movie or series search hit. Instances are built fresh per search request
// and never persisted.
type CanonicalTitle struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"mediaType"`
	Title        string    `json:"title"`
	Year         *int      `json:"year"`
	Description  string    `json:"description"`
	PosterURL    string    `json:"posterUrl"`
	ReferenceURL string    `json:"referenceUrl"`
}

// TorrentSource is a single torrent-index hit convertible to a magnet link.
type TorrentSource struct {
	Title    string `json:"title"`
	Magnet   string `json:"magnet"`
	Size     string `json:"size"`
	Seeds    int    `json:"seeds"`
	Peers    int    `json:"peers"`
	Provider string `json:"provider"`
}

// SearchResponse is the composite payload returned by the search endpoint.
// The primary title's fields are flattened at the top level; collections are
// always present (empty, never null) so the shape is stable regardless of
// which upstreams were available.
type SearchResponse struct {
	Title              string           `json:"title"`
	Year               *int             `json:"year"`
	Description        string           `json:"description"`
	PosterURL          string           `json:"posterUrl"`
	MediaType          *MediaType       `json:"mediaType"`
	ID                 *int64           `json:"id"`
	ReferenceURL       string           `json:"referenceUrl"`
	AlternativeResults []CanonicalTitle `json:"alternativeResults"`
	FreeSources        []string         `json:"freeSources"`
	TorrentSources     []TorrentSource  `json:"torrentSources"`
	AIHighlights       []string         `json:"aiHighlights"`
}

// EmptySearchResponse builds the well-formed "no results" payload. The title
// echoes the original query so callers can render "no results for X".
func EmptySearchResponse(query string) SearchResponse {
	return SearchResponse{
		Title:              query,
		AlternativeResults: []CanonicalTitle{},
		FreeSources:        []string{},
		TorrentSources:     []TorrentSource{},
		AIHighlights:       []string{},
	}
}

// PriceEntry is one normalized availability/pricing offer for a title.
type PriceEntry struct {
	ProviderName string   `json:"provider_name"`
	Type         string   `json:"type"`
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency"`
	Quality      string   `json:"quality"`
	URL          string   `json:"url"`
}

// Recommendation is one AI-suggested title with a short rationale.
type Recommendation struct {
	TitleID     *int64 `json:"tmdb_id"`
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// TrendingItem is one entry of the trending top list.
type TrendingItem struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
}

// TrendingTop holds the top-3 movies and series for a period.
type TrendingTop struct {
	Movies   []TrendingItem `json:"movies_top3"`
	Series   []TrendingItem `json:"series_top3"`
	Period   string         `json:"period"`
	Language string         `json:"language"`
	Source   string         `json:"source"`
}

// ScheduleEntry is one broadcast slot from the TV schedule provider.
type ScheduleEntry struct {
	Airtime *string `json:"airtime"`
	Show    *string `json:"show"`
	Channel *string `json:"channel"`
}

// Schedule is the TV schedule for one country and date.
type Schedule struct {
	Country string          `json:"country"`
	Date    string          `json:"date"`
	Source  string          `json:"source"`
	Entries []ScheduleEntry `json:"entries"`
}
