package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"streamscout/models"
	"streamscout/services/catalog"
)

// discoveryCap bounds the merged filter-driven candidate list.
const discoveryCap = 12

// CatalogClient is the candidate-retrieval surface of the catalog provider.
type CatalogClient interface {
	SearchMulti(ctx context.Context, query string) ([]models.CanonicalTitle, error)
	Discover(ctx context.Context, mediaType models.MediaType, f catalog.DiscoverFilters) ([]models.CanonicalTitle, error)
	ResolvePersonID(ctx context.Context, name string) (int64, error)
}

// FreeSourceLookup resolves a title to its free streaming URLs.
type FreeSourceLookup interface {
	FreeSources(ctx context.Context, mediaType models.MediaType, titleID int64) []string
}

// TorrentLookup resolves a title to torrent sources, subject to policy.
type TorrentLookup interface {
	Enabled() bool
	Search(ctx context.Context, title string, year *int) []models.TorrentSource
}

// HighlightLookup produces short AI viewer notes for a title.
type HighlightLookup interface {
	Highlights(ctx context.Context, title models.CanonicalTitle) ([]string, error)
}

// Filters are the structured search constraints. A zero value means free-text
// search only.
type Filters struct {
	GenreID   int
	Year      int
	MinRating float64
	Actor     string
	Director  string
	MediaType *models.MediaType
}

// IsZero reports whether no structured constraint is set.
func (f Filters) IsZero() bool {
	return f.GenreID == 0 && f.Year == 0 && f.MinRating == 0 &&
		strings.TrimSpace(f.Actor) == "" && strings.TrimSpace(f.Director) == "" &&
		f.MediaType == nil
}

// Query is one search request: free text, structured filters, or both.
type Query struct {
	Title   string
	Filters Filters
}

// Aggregator orchestrates candidate retrieval against the catalog and the
// concurrent enrichment fan-out for the primary result. All provider failures
// except the catalog's own degrade to empty contributions.
type Aggregator struct {
	catalog      CatalogClient
	availability FreeSourceLookup
	torrents     TorrentLookup
	ai           HighlightLookup
}

// NewAggregator wires the aggregator to its provider clients.
func NewAggregator(catalogClient CatalogClient, availability FreeSourceLookup, torrents TorrentLookup, ai HighlightLookup) *Aggregator {
	return &Aggregator{
		catalog:      catalogClient,
		availability: availability,
		torrents:     torrents,
		ai:           ai,
	}
}

// Search runs the full pipeline: candidate retrieval, primary selection,
// enrichment fan-out, response assembly. "No results" is a well-formed empty
// response, not an error; only catalog failures surface to the caller.
func (a *Aggregator) Search(ctx context.Context, q Query) (models.SearchResponse, error) {
	title := strings.TrimSpace(q.Title)

	var candidates []models.CanonicalTitle
	if !q.Filters.IsZero() {
		candidates = a.discover(ctx, title, q.Filters)
	}

	// Text search runs when there are no filters, or when discovery came up
	// empty and the caller also gave a literal title to fall back on.
	if len(candidates) == 0 && title != "" {
		found, err := a.catalog.SearchMulti(ctx, title)
		if err != nil {
			return models.SearchResponse{}, fmt.Errorf("catalog search for %q: %w", title, err)
		}
		candidates = found
	}

	if len(candidates) == 0 {
		return models.EmptySearchResponse(title), nil
	}

	primary := candidates[0]
	alternatives := candidates[1:]

	freeSources, torrentSources, highlights := a.enrich(ctx, primary)

	mediaType := primary.MediaType
	id := primary.ID
	return models.SearchResponse{
		Title:              primary.Title,
		Year:               primary.Year,
		Description:        primary.Description,
		PosterURL:          primary.PosterURL,
		MediaType:          &mediaType,
		ID:                 &id,
		ReferenceURL:       primary.ReferenceURL,
		AlternativeResults: alternatives,
		FreeSources:        freeSources,
		TorrentSources:     torrentSources,
		AIHighlights:       highlights,
	}, nil
}

// discover runs filter-driven candidate retrieval: person-name resolution,
// one concurrent discovery call per applicable media type, optional title
// post-filtering, and the merged cap. Every step is best-effort.
func (a *Aggregator) discover(ctx context.Context, title string, f Filters) []models.CanonicalTitle {
	personIDs := a.resolvePersons(ctx, f.Actor, f.Director)

	mediaTypes := []models.MediaType{models.MediaTypeMovie, models.MediaTypeSeries}
	if f.MediaType != nil {
		mediaTypes = []models.MediaType{*f.MediaType}
	}

	results := make([][]models.CanonicalTitle, len(mediaTypes))
	p := pool.New().WithMaxGoroutines(len(mediaTypes))
	for i, mediaType := range mediaTypes {
		p.Go(func() {
			found, err := a.catalog.Discover(ctx, mediaType, catalog.DiscoverFilters{
				GenreID:   f.GenreID,
				Year:      f.Year,
				MinRating: f.MinRating,
				PersonIDs: personIDs,
			})
			if err != nil {
				log.Printf("[search] discovery for %s failed: %v", mediaType, err)
				return
			}
			results[i] = found
		})
	}
	p.Wait()

	merged := make([]models.CanonicalTitle, 0, discoveryCap)
	needle := strings.ToLower(title)
	for _, list := range results {
		for _, candidate := range list {
			if needle != "" && !strings.Contains(strings.ToLower(candidate.Title), needle) {
				continue
			}
			merged = append(merged, candidate)
			if len(merged) == discoveryCap {
				return merged
			}
		}
	}
	return merged
}

// resolvePersons maps actor/director names to provider IDs. Failures are
// swallowed; they reduce match quality, never abort the request.
func (a *Aggregator) resolvePersons(ctx context.Context, names ...string) []int64 {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		id, err := a.catalog.ResolvePersonID(ctx, name)
		if err != nil {
			log.Printf("[search] person lookup for %q failed: %v", name, err)
			continue
		}
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// enrich fans out the three primary-keyed lookups concurrently. Each facet
// owns its failure boundary and contributes an empty value when it breaks.
func (a *Aggregator) enrich(ctx context.Context, primary models.CanonicalTitle) ([]string, []models.TorrentSource, []string) {
	freeSources := []string{}
	torrentSources := []models.TorrentSource{}
	highlights := []string{}

	p := pool.New().WithMaxGoroutines(3)
	p.Go(func() {
		freeSources = a.availability.FreeSources(ctx, primary.MediaType, primary.ID)
	})
	p.Go(func() {
		if !a.torrents.Enabled() {
			return
		}
		torrentSources = a.torrents.Search(ctx, primary.Title, primary.Year)
	})
	p.Go(func() {
		lines, err := a.ai.Highlights(ctx, primary)
		if err != nil {
			log.Printf("[search] highlights for %q failed: %v", primary.Title, err)
			return
		}
		highlights = lines
	})
	p.Wait()

	if freeSources == nil {
		freeSources = []string{}
	}
	if torrentSources == nil {
		torrentSources = []models.TorrentSource{}
	}
	if highlights == nil {
		highlights = []string{}
	}
	return freeSources, torrentSources, highlights
}
