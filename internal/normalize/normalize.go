// Package normalize maps decoded provider responses onto the canonical
// record types. Functions here are pure.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/cityexplorer/internal/models"
	"github.com/lox/cityexplorer/internal/provider"
)

// WeatherTimeLayout renders a forecast day as "Fri Oct 19 2018".
const WeatherTimeLayout = "Mon Jan 02 2006"

// NoResultError means the provider answered successfully but with nothing to
// normalize.
type NoResultError struct {
	Provider provider.Name
	Query    string
	Target   string // set by the caller once the request is known
}

func (e *NoResultError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("no %s results for %q. url: %s", e.Provider, e.Query, e.Target)
	}
	return fmt.Sprintf("no %s results for %q", e.Provider, e.Query)
}

// Location builds a Location from the first geocode result.
func Location(query string, resp *provider.GeocodeResponse) (models.Location, error) {
	if resp == nil || len(resp.Results) == 0 {
		return models.Location{}, &NoResultError{Provider: provider.Geocode, Query: query}
	}

	first := resp.Results[0]
	return models.Location{
		SearchQuery:    query,
		FormattedQuery: first.FormattedAddress,
		Latitude:       first.Geometry.Location.Lat,
		Longitude:      first.Geometry.Location.Lng,
		PlaceID:        first.PlaceID,
	}, nil
}

// WeatherDays maps each daily forecast in provider order. Times are rendered
// in loc.
func WeatherDays(resp *provider.WeatherResponse, loc *time.Location) []models.WeatherDay {
	if resp == nil || resp.Daily == nil {
		return []models.WeatherDay{}
	}
	if loc == nil {
		loc = time.UTC
	}

	days := make([]models.WeatherDay, 0, len(resp.Daily.Data))
	for _, d := range resp.Daily.Data {
		days = append(days, models.WeatherDay{
			Forecast: d.Summary,
			Time:     time.Unix(d.Time, 0).In(loc).Format(WeatherTimeLayout),
		})
	}
	return days
}

func Trails(resp *provider.TrailsResponse) []models.Trail {
	if resp == nil {
		return []models.Trail{}
	}

	trails := make([]models.Trail, 0, len(resp.Trails))
	for _, t := range resp.Trails {
		date, clock := splitConditionDate(t.ConditionDate)
		trails = append(trails, models.Trail{
			Name:          t.Name,
			Location:      t.Location,
			Length:        t.Length,
			Stars:         t.Stars,
			StarVotes:     t.StarVotes,
			Summary:       t.Summary,
			TrailURL:      t.URL,
			Conditions:    t.ConditionStatus,
			ConditionDate: date,
			ConditionTime: clock,
		})
	}
	return trails
}

// splitConditionDate splits "2018-07-21 14:30:00" into its date and time.
func splitConditionDate(s string) (string, string) {
	date, clock, _ := strings.Cut(strings.TrimSpace(s), " ")
	return date, clock
}

func Movies(resp *provider.MoviesResponse) []models.MovieSummary {
	if resp == nil {
		return []models.MovieSummary{}
	}

	movies := make([]models.MovieSummary, 0, len(resp.Results))
	for _, m := range resp.Results {
		movies = append(movies, models.MovieSummary{
			Title:        m.Title,
			Overview:     m.Overview,
			AverageVotes: m.VoteAverage,
			TotalVotes:   m.VoteCount,
			Popularity:   m.Popularity,
			ReleasedOn:   m.ReleaseDate,
		})
	}
	return movies
}
