package normalize

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lox/cityexplorer/internal/models"
	"github.com/lox/cityexplorer/internal/provider"
)

func decode[T any](t *testing.T, raw string) *T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &v
}

func TestLocation(t *testing.T) {
	resp := decode[provider.GeocodeResponse](t, `{"results":[
		{"formatted_address":"Everett, WA","place_id":"abc123","geometry":{"location":{"lat":47.97,"lng":-122.20}}},
		{"formatted_address":"Elsewhere","place_id":"zzz","geometry":{"location":{"lat":1,"lng":2}}}
	]}`)

	got, err := Location("98201", resp)
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	want := models.Location{
		SearchQuery:    "98201",
		FormattedQuery: "Everett, WA",
		Latitude:       47.97,
		Longitude:      -122.20,
		PlaceID:        "abc123",
	}
	if got != want {
		t.Errorf("Location = %+v, want %+v", got, want)
	}
}

func TestLocation_NoResults(t *testing.T) {
	tests := []struct {
		name string
		resp *provider.GeocodeResponse
	}{
		{"nil response", nil},
		{"empty results", &provider.GeocodeResponse{Status: "ZERO_RESULTS", Results: []provider.GeocodeResult{}}},
		{"missing results", &provider.GeocodeResponse{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Location("atlantis", tt.resp)
			var nre *NoResultError
			if !errors.As(err, &nre) {
				t.Fatalf("err = %v, want *NoResultError", err)
			}
			if nre.Query != "atlantis" || nre.Provider != provider.Geocode {
				t.Errorf("NoResultError = %+v", nre)
			}
		})
	}
}

func TestNoResultError_Message(t *testing.T) {
	err := &NoResultError{Provider: provider.Geocode, Query: "atlantis"}
	if got := err.Error(); got != `no geocode results for "atlantis"` {
		t.Errorf("Error() = %q", got)
	}

	err.Target = "https://geo.example/?address=atlantis&key=REDACTED"
	if !strings.HasSuffix(err.Error(), "url: https://geo.example/?address=atlantis&key=REDACTED") {
		t.Errorf("Error() = %q, want target suffix", err.Error())
	}
}

func TestWeatherDays(t *testing.T) {
	resp := decode[provider.WeatherResponse](t, `{"daily":{"data":[
		{"time":1539990000,"summary":"Rain until afternoon."},
		{"time":1540076400,"summary":"Partly cloudy."},
		{"time":1540162800,"summary":"Clear throughout the day."}
	]}}`)

	tests := []struct {
		name string
		loc  *time.Location
		want []string
	}{
		{"utc", time.UTC, []string{"Fri Oct 19 2018", "Sat Oct 20 2018", "Sun Oct 21 2018"}},
		{"nil defaults to utc", nil, []string{"Fri Oct 19 2018", "Sat Oct 20 2018", "Sun Oct 21 2018"}},
		{"ahead of utc", time.FixedZone("JST", 9*3600), []string{"Sat Oct 20 2018", "Sun Oct 21 2018", "Mon Oct 22 2018"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := WeatherDays(resp, tt.loc)
			if len(days) != len(tt.want) {
				t.Fatalf("len(days) = %d, want %d", len(days), len(tt.want))
			}
			for i, d := range days {
				if d.Time != tt.want[i] {
					t.Errorf("days[%d].Time = %q, want %q", i, d.Time, tt.want[i])
				}
				if d.Forecast != resp.Daily.Data[i].Summary {
					t.Errorf("days[%d].Forecast = %q, want %q", i, d.Forecast, resp.Daily.Data[i].Summary)
				}
			}
		})
	}
}

func TestWeatherDays_Empty(t *testing.T) {
	if days := WeatherDays(nil, time.UTC); days == nil || len(days) != 0 {
		t.Errorf("WeatherDays(nil) = %#v, want empty slice", days)
	}
}

func TestTrails(t *testing.T) {
	resp := decode[provider.TrailsResponse](t, `{"trails":[
		{"name":"Lime Kiln","location":"Granite Falls, Washington","length":7,"stars":4.4,"starVotes":12,"summary":"Old rail grade","url":"https://example.com/t/1","conditionStatus":"All Clear","conditionDate":"2018-07-21 14:30:00"},
		{"name":"Heather Lake","conditionDate":""}
	]}`)

	trails := Trails(resp)
	if len(trails) != 2 {
		t.Fatalf("len(trails) = %d, want 2", len(trails))
	}

	want := models.Trail{
		Name:          "Lime Kiln",
		Location:      "Granite Falls, Washington",
		Length:        7,
		Stars:         4.4,
		StarVotes:     12,
		Summary:       "Old rail grade",
		TrailURL:      "https://example.com/t/1",
		Conditions:    "All Clear",
		ConditionDate: "2018-07-21",
		ConditionTime: "14:30:00",
	}
	if trails[0] != want {
		t.Errorf("trails[0] = %+v, want %+v", trails[0], want)
	}
	if trails[1].Name != "Heather Lake" || trails[1].ConditionDate != "" || trails[1].ConditionTime != "" {
		t.Errorf("trails[1] = %+v", trails[1])
	}
}

func TestMovies(t *testing.T) {
	resp := decode[provider.MoviesResponse](t, `{"page":1,"results":[
		{"title":"Sleepless in Seattle","overview":"A widower...","vote_average":6.7,"vote_count":1500,"popularity":12.3,"release_date":"1993-06-24"},
		{"title":"Seattle Superstorm"}
	]}`)

	movies := Movies(resp)
	if len(movies) != 2 {
		t.Fatalf("len(movies) = %d, want 2", len(movies))
	}

	want := models.MovieSummary{
		Title:        "Sleepless in Seattle",
		Overview:     "A widower...",
		AverageVotes: 6.7,
		TotalVotes:   1500,
		Popularity:   12.3,
		ReleasedOn:   "1993-06-24",
	}
	if movies[0] != want {
		t.Errorf("movies[0] = %+v, want %+v", movies[0], want)
	}
	if movies[1].Title != "Seattle Superstorm" {
		t.Errorf("movies[1].Title = %q", movies[1].Title)
	}
}
