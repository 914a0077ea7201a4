package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"streamscout/models"
	"streamscout/services/ai"
)

const (
	defaultModel         = "llama3-70b-8192"
	recommendTemperature = 0.7
	recommendMaxTokens   = 600

	// recommendationCap bounds the suggestion list per request.
	recommendationCap = 5
	// watchlistSeedCap bounds how many saved titles seed the prompt.
	watchlistSeedCap = 8
)

// Completer is the AI surface recommendations are generated against.
type Completer interface {
	IsConfigured() bool
	Complete(ctx context.Context, model string, temperature float64, maxTokens int, messages []ai.Message) (string, error)
}

// TitleResolver maps a recommended title back to a catalog ID.
type TitleResolver interface {
	SearchMulti(ctx context.Context, query string) ([]models.CanonicalTitle, error)
}

// Service produces AI-driven title suggestions seeded by the user's watchlist
// and last search, with a deterministic stub when the AI path is unavailable.
type Service struct {
	ai       Completer
	resolver TitleResolver
	model    string
}

// NewService wires the recommendation service. An empty model selects the
// default recommender model.
func NewService(completer Completer, resolver TitleResolver, model string) *Service {
	if model == "" {
		model = defaultModel
	}
	return &Service{ai: completer, resolver: resolver, model: model}
}

// Input is the personalization context for one recommendation request.
type Input struct {
	Watchlist  []models.WatchlistItem
	LastSearch string
}

// Recommend returns up to five suggestions. The AI path is best-effort: any
// failure (unconfigured, upstream error, unparseable output) falls back to
// the stub list so the endpoint always has something to show.
func (s *Service) Recommend(ctx context.Context, input Input) []models.Recommendation {
	if s.ai.IsConfigured() {
		recs, err := s.fromAI(ctx, input)
		if err != nil {
			log.Printf("[recommend] ai recommendation failed: %v", err)
		} else if len(recs) > 0 {
			return recs
		}
	}
	return stubRecommendations(input)
}

func (s *Service) fromAI(ctx context.Context, input Input) ([]models.Recommendation, error) {
	prompt := buildPrompt(input)

	raw, err := s.ai.Complete(ctx, s.model, recommendTemperature, recommendMaxTokens, []ai.Message{
		{Role: "system", Content: "You are a film curator that returns clean JSON responses without commentary."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseRecommendations(raw)
	if err != nil {
		return nil, err
	}

	recs := make([]models.Recommendation, 0, recommendationCap)
	for _, item := range parsed {
		title := item.Title
		if title == "" {
			title = item.Name
		}
		if title == "" {
			continue
		}

		explanation := item.Explanation
		if explanation == "" {
			explanation = item.Reason
		}

		id := item.TitleID
		if id == nil {
			id = item.TitleIDAlt
		}
		if id == nil {
			id = s.resolveTitleID(ctx, title)
		}

		recs = append(recs, models.Recommendation{TitleID: id, Title: title, Explanation: explanation})
		if len(recs) == recommendationCap {
			break
		}
	}
	return recs, nil
}

func buildPrompt(input Input) string {
	lines := []string{
		"Suggest up to five movies or series in JSON format.",
		"Each item must be an object with keys: tmdb_id (number or null), title (string), explanation (string).",
		"Keep each explanation to two sentences at most.",
		"Use null when you do not know the TMDB ID.",
	}

	seeded := false
	if len(input.Watchlist) > 0 {
		seeded = true
		lines = append(lines, "Watchlist:")
		seeds := input.Watchlist
		if len(seeds) > watchlistSeedCap {
			seeds = seeds[:watchlistSeedCap]
		}
		for _, item := range seeds {
			mediaType := item.MediaType
			if mediaType == "" {
				mediaType = "unknown"
			}
			lines = append(lines, fmt.Sprintf("- %s (%s)", item.Title, mediaType))
		}
	}
	if input.LastSearch != "" {
		seeded = true
		lines = append(lines, "Last search: "+input.LastSearch)
	}
	if !seeded {
		lines = append(lines, "No context provided, suggest acclaimed recent titles.")
	}
	return strings.Join(lines, "\n")
}

// rawRecommendation tolerates the key variants models actually emit.
type rawRecommendation struct {
	TitleID     *int64 `json:"tmdb_id"`
	TitleIDAlt  *int64 `json:"tmdbId"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
	Reason      string `json:"reason"`
}

var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]+\]`)

// parseRecommendations decodes the completion text as a JSON array, falling
// back to the first bracketed array embedded in surrounding prose.
func parseRecommendations(raw string) ([]rawRecommendation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty completion")
	}

	var parsed []rawRecommendation
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed, nil
	}

	match := jsonArrayPattern.FindString(raw)
	if match == "" {
		return nil, fmt.Errorf("no JSON array in completion")
	}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, fmt.Errorf("parse embedded array: %w", err)
	}
	return parsed, nil
}

// resolveTitleID looks the title up in the catalog, best-effort.
func (s *Service) resolveTitleID(ctx context.Context, title string) *int64 {
	results, err := s.resolver.SearchMulti(ctx, title)
	if err != nil {
		log.Printf("[recommend] title resolution for %q failed: %v", title, err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}
	id := results[0].ID
	return &id
}

// stubRecommendations is the deterministic fallback used when the AI path
// yields nothing.
func stubRecommendations(input Input) []models.Recommendation {
	seeds := make([]string, 0, 3)
	for i, item := range input.Watchlist {
		if i == 2 {
			break
		}
		seeds = append(seeds, item.Title)
	}
	if input.LastSearch != "" {
		seeds = append(seeds, input.LastSearch)
	}

	base := "popular sci-fi classics"
	if len(seeds) > 0 {
		base = strings.Join(seeds, ", ")
	}

	matrix := int64(603)
	inception := int64(27205)
	return []models.Recommendation{
		{
			TitleID:     &matrix,
			Title:       "The Matrix",
			Explanation: fmt.Sprintf("If you enjoy %s, The Matrix remains the definitive cyberpunk reference.", base),
		},
		{
			TitleID:     &inception,
			Title:       "Inception",
			Explanation: "Nolan's cerebral sci-fi adventure about dreams within dreams.",
		},
	}
}
