package models

// Location is a geocoded place as returned to clients.
type Location struct {
	SearchQuery    string  `json:"search_query"`
	FormattedQuery string  `json:"formatted_query"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	PlaceID        string  `json:"place_id"`
}

// LocationRow is a persisted location. Only the coordinates and place id
// round-trip through storage.
type LocationRow struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceID   string  `json:"place_id"`
}

type WeatherDay struct {
	Forecast string `json:"forecast"`
	Time     string `json:"time"`
}

type Trail struct {
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Length        float64 `json:"length"`
	Stars         float64 `json:"stars"`
	StarVotes     int     `json:"star_votes"`
	Summary       string  `json:"summary"`
	TrailURL      string  `json:"trail_url"`
	Conditions    string  `json:"conditions"`
	ConditionDate string  `json:"condition_date"`
	ConditionTime string  `json:"condition_time"`
}

type MovieSummary struct {
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	AverageVotes float64 `json:"average_votes"`
	TotalVotes   int     `json:"total_votes"`
	Popularity   float64 `json:"popularity"`
	ReleasedOn   string  `json:"released_on"`
}
