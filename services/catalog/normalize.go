package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"streamscout/models"
)

// normalizeItem converts a raw provider result into the canonical title shape.
// Items without a provider ID are rejected (nil return); every other field
// degrades to a zero value. The fallback title is used when none of the
// provider title fields is populated.
func normalizeItem(raw rawItem, fallback string) *models.CanonicalTitle {
	if raw.ID == 0 {
		return nil
	}

	mediaType := models.MediaTypeMovie
	if raw.MediaType == "tv" {
		mediaType = models.MediaTypeSeries
	}

	title := firstNonEmpty(raw.Title, raw.Name, raw.OriginalTitle, raw.OriginalName, fallback)

	date := raw.ReleaseDate
	if date == "" {
		date = raw.FirstAirDate
	}
	var year *int
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			year = &y
		}
	}

	var posterURL string
	if raw.PosterPath != "" {
		posterURL = imageBaseURL + raw.PosterPath
	}

	return &models.CanonicalTitle{
		ID:           raw.ID,
		MediaType:    mediaType,
		Title:        title,
		Year:         year,
		Description:  raw.Overview,
		PosterURL:    posterURL,
		ReferenceURL: fmt.Sprintf("%s/%s/%d", referenceBaseURL, providerSegment(mediaType), raw.ID),
	}
}

// providerSegment maps the canonical media type onto the provider's URL
// vocabulary, which says "tv" where we say "series".
func providerSegment(mediaType models.MediaType) string {
	if mediaType == models.MediaTypeSeries {
		return "tv"
	}
	return "movie"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
