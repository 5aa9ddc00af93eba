package provider

import "context"

// MoviesResponse is one page of movie search results.
type MoviesResponse struct {
	Page         int           `json:"page"`
	TotalResults int           `json:"total_results"`
	TotalPages   int           `json:"total_pages"`
	Results      []MovieResult `json:"results"`
}

type MovieResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	ReleaseDate string  `json:"release_date"`
}

// Movies fetches the first page of titles matching query.
func (c *Client) Movies(ctx context.Context, query string) (*MoviesResponse, error) {
	req := c.MoviesRequest(query)

	var data MoviesResponse
	if err := c.fetchJSON(ctx, req, &data); err != nil {
		return nil, err
	}
	if data.Results == nil {
		return nil, malformed(req, "movie response has no results list")
	}
	return &data, nil
}
