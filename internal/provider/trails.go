package provider

import "context"

type TrailsResponse struct {
	Trails  []TrailResult `json:"trails"`
	Success int           `json:"success"`
}

type TrailResult struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Summary         string  `json:"summary"`
	Location        string  `json:"location"`
	URL             string  `json:"url"`
	Length          float64 `json:"length"`
	Stars           float64 `json:"stars"`
	StarVotes       int     `json:"starVotes"`
	ConditionStatus string  `json:"conditionStatus"`
	ConditionDate   string  `json:"conditionDate"`
}

// Trails fetches trails within TrailRadiusMiles of a coordinate pair.
func (c *Client) Trails(ctx context.Context, lat, lon float64) (*TrailsResponse, error) {
	req := c.TrailsRequest(lat, lon)

	var data TrailsResponse
	if err := c.fetchJSON(ctx, req, &data); err != nil {
		return nil, err
	}
	if data.Trails == nil {
		return nil, malformed(req, "trails response has no trails list")
	}
	return &data, nil
}
