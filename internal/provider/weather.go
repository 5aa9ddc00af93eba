package provider

import "context"

type WeatherResponse struct {
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Timezone  string             `json:"timezone"`
	Daily     *WeatherDailyBlock `json:"daily"`
}

type WeatherDailyBlock struct {
	Summary string         `json:"summary"`
	Data    []WeatherDaily `json:"data"`
}

type WeatherDaily struct {
	Time    int64  `json:"time"`
	Summary string `json:"summary"`
}

// Weather fetches the daily forecast for a coordinate pair. A response
// without a daily block is malformed.
func (c *Client) Weather(ctx context.Context, lat, lon float64) (*WeatherResponse, error) {
	req := c.WeatherRequest(lat, lon)

	var data WeatherResponse
	if err := c.fetchJSON(ctx, req, &data); err != nil {
		return nil, err
	}
	if data.Daily == nil || data.Daily.Data == nil {
		return nil, malformed(req, "weather response has no daily data")
	}
	return &data, nil
}
