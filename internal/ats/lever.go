package ats

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const leverURL = "https://api.lever.co"

type leverPosting struct {
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
	Lists            []struct {
		Text    string `json:"text"`
		Content string `json:"content"`
	} `json:"lists"`
	AdditionalPlain string `json:"additionalPlain"`
}

// Lever reads the public Lever postings API.
type Lever struct {
	client  *Client
	BaseURL string
}

func NewLever(client *Client) *Lever {
	return &Lever{client: client, BaseURL: leverURL}
}

func (l *Lever) Vendor() string { return VendorLever }

func (l *Lever) FetchListings(ctx context.Context, board string) ([]Listing, error) {
	endpoint := fmt.Sprintf("%s/v0/postings/%s?mode=json", strings.TrimRight(l.BaseURL, "/"), url.PathEscape(board))

	var postings []leverPosting
	if err := l.client.getJSON(ctx, endpoint, &postings); err != nil {
		return nil, fmt.Errorf("lever board %s: %w", board, err)
	}

	listings := make([]Listing, 0, len(postings))
	for _, p := range postings {
		listings = append(listings, Listing{
			Title:    p.Text,
			URL:      p.HostedURL,
			Location: p.Categories.Location,
			Text:     leverText(p),
		})
	}

	return listings, nil
}

// leverText joins the plain description, the titled lists (their content is
// HTML) and the closing paragraph.
func leverText(p leverPosting) string {
	parts := []string{p.DescriptionPlain}
	for _, list := range p.Lists {
		parts = append(parts, list.Text+": "+StripHTML(list.Content))
	}
	parts = append(parts, p.AdditionalPlain)

	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.Join(parts, " "), " "))
}
