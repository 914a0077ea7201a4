package catalog

import (
	"testing"

	"streamscout/models"
)

func TestNormalizeItemMovie(t *testing.T) {
	title := normalizeItem(rawItem{
		ID:          27205,
		MediaType:   "movie",
		Title:       "Inception",
		ReleaseDate: "2010-07-15",
		Overview:    "A thief who steals corporate secrets.",
		PosterPath:  "/inception.jpg",
	}, "")
	if title == nil {
		t.Fatal("expected a normalized title")
	}
	if title.MediaType != models.MediaTypeMovie {
		t.Fatalf("unexpected media type: %s", title.MediaType)
	}
	if title.Year == nil || *title.Year != 2010 {
		t.Fatalf("unexpected year: %v", title.Year)
	}
	if title.PosterURL != "https://image.tmdb.org/t/p/w500/inception.jpg" {
		t.Fatalf("unexpected poster url: %s", title.PosterURL)
	}
	if title.ReferenceURL != "https://www.themoviedb.org/movie/27205" {
		t.Fatalf("unexpected reference url: %s", title.ReferenceURL)
	}
}

func TestNormalizeItemSeriesUsesTVSegment(t *testing.T) {
	title := normalizeItem(rawItem{
		ID:           1396,
		MediaType:    "tv",
		Name:         "Breaking Bad",
		FirstAirDate: "2008-01-20",
	}, "")
	if title == nil {
		t.Fatal("expected a normalized title")
	}
	if title.MediaType != models.MediaTypeSeries {
		t.Fatalf("unexpected media type: %s", title.MediaType)
	}
	if title.Title != "Breaking Bad" {
		t.Fatalf("unexpected title: %s", title.Title)
	}
	if title.Year == nil || *title.Year != 2008 {
		t.Fatalf("unexpected year: %v", title.Year)
	}
	if title.ReferenceURL != "https://www.themoviedb.org/tv/1396" {
		t.Fatalf("unexpected reference url: %s", title.ReferenceURL)
	}
}

func TestNormalizeItemRejectsMissingID(t *testing.T) {
	if title := normalizeItem(rawItem{Title: "Ghost"}, ""); title != nil {
		t.Fatalf("expected nil for item without ID, got %+v", title)
	}
}

func TestNormalizeItemDegradesMissingFields(t *testing.T) {
	title := normalizeItem(rawItem{ID: 42, MediaType: "movie", ReleaseDate: "bad-date"}, "fallback query")
	if title == nil {
		t.Fatal("expected a normalized title")
	}
	if title.Title != "fallback query" {
		t.Fatalf("expected fallback title, got %q", title.Title)
	}
	if title.Year != nil {
		t.Fatalf("expected nil year for malformed date, got %d", *title.Year)
	}
	if title.PosterURL != "" {
		t.Fatalf("expected empty poster url, got %s", title.PosterURL)
	}
}

func TestNormalizeItemTitleFallbackChain(t *testing.T) {
	title := normalizeItem(rawItem{ID: 7, MediaType: "movie", OriginalTitle: "Original"}, "query")
	if title.Title != "Original" {
		t.Fatalf("expected original_title before fallback, got %q", title.Title)
	}
}
