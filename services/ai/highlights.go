package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"streamscout/models"
)

const (
	highlightModel       = "llama3-8b-8192"
	highlightTemperature = 0.6
	highlightMaxTokens   = 180

	// highlightCap bounds the AI contribution per search response.
	highlightCap = 3
)

var bulletPrefix = regexp.MustCompile(`^[-\*\d\.\s]+`)

// Highlights asks the model for up to three short viewer notes about a title.
// An unconfigured client returns an empty list and no error; the facet is
// decorative and must never block a search.
func (c *Client) Highlights(ctx context.Context, title models.CanonicalTitle) ([]string, error) {
	if !c.IsConfigured() {
		return []string{}, nil
	}

	year := "unknown"
	if title.Year != nil {
		year = strconv.Itoa(*title.Year)
	}
	description := title.Description
	if description == "" {
		description = "No description"
	}
	reference := "no reference available"
	if title.ReferenceURL != "" {
		reference = title.ReferenceURL
	}

	prompt := strings.Join([]string{
		fmt.Sprintf("Title: %s", title.Title),
		fmt.Sprintf("Year: %s", year),
		fmt.Sprintf("Type: %s", title.MediaType),
		fmt.Sprintf("Description: %s", description),
		fmt.Sprintf("Reference: %s", reference),
		"Prepare up to three short recommendations or facts for viewers.",
	}, "\n")

	text, err := c.Complete(ctx, highlightModel, highlightTemperature, highlightMaxTokens, []Message{
		{Role: "system", Content: "You are a movie concierge that responds in short bullet-like lines without numbering."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}
	return parseHighlights(text), nil
}

// parseHighlights turns free-form completion text into clean highlight lines:
// one per input line, bullet and numbering prefixes stripped, empties dropped,
// capped at three.
func parseHighlights(text string) []string {
	lines := strings.Split(text, "\n")
	highlights := make([]string, 0, highlightCap)
	for _, line := range lines {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		highlights = append(highlights, line)
		if len(highlights) == highlightCap {
			break
		}
	}
	return highlights
}
