package ats

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const greenhouseURL = "https://boards-api.greenhouse.io"

type greenhouseResponse struct {
	Jobs []struct {
		Title       string `json:"title"`
		AbsoluteURL string `json:"absolute_url"`
		Location    *struct {
			Name string `json:"name"`
		} `json:"location"`
		Content string `json:"content"`
	} `json:"jobs"`
}

// Greenhouse reads the public Greenhouse job board API.
type Greenhouse struct {
	client  *Client
	BaseURL string
}

func NewGreenhouse(client *Client) *Greenhouse {
	return &Greenhouse{client: client, BaseURL: greenhouseURL}
}

func (g *Greenhouse) Vendor() string { return VendorGreenhouse }

func (g *Greenhouse) FetchListings(ctx context.Context, board string) ([]Listing, error) {
	endpoint := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", strings.TrimRight(g.BaseURL, "/"), url.PathEscape(board))

	var response greenhouseResponse
	if err := g.client.getJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("greenhouse board %s: %w", board, err)
	}

	listings := make([]Listing, 0, len(response.Jobs))
	for _, job := range response.Jobs {
		location := ""
		if job.Location != nil {
			location = job.Location.Name
		}
		listings = append(listings, Listing{
			Title:    job.Title,
			URL:      job.AbsoluteURL,
			Location: location,
			Text:     StripHTML(job.Content),
		})
	}

	return listings, nil
}
