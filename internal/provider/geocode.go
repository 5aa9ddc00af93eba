package provider

import "context"

// GeocodeResponse is the subset of the geocoding API response we read.
type GeocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	PlaceID          string `json:"place_id"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// Geocode fetches and decodes a geocoding response. An empty result list is
// not an error here; ZERO_RESULTS is left for the caller to interpret.
func (c *Client) Geocode(ctx context.Context, req Request) (*GeocodeResponse, error) {
	var data GeocodeResponse
	if err := c.fetchJSON(ctx, req, &data); err != nil {
		return nil, err
	}

	switch data.Status {
	case "", "OK", "ZERO_RESULTS":
	default:
		return nil, malformed(req, "geocode status %s: %s", data.Status, data.ErrorMessage)
	}

	return &data, nil
}
