package ats

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSS reads a job board exposed as an RSS or Atom feed. The board is the feed URL.
type RSS struct {
	client *Client
}

func NewRSS(client *Client) *RSS {
	return &RSS{client: client}
}

func (r *RSS) Vendor() string { return VendorRSS }

func (r *RSS) FetchListings(ctx context.Context, board string) ([]Listing, error) {
	body, err := r.client.get(ctx, board, "application/rss+xml, application/atom+xml, application/xml")
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", board, err)
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", board, err)
	}

	listings := make([]Listing, 0, len(feed.Items))
	for _, it := range feed.Items {
		text := it.Content
		if strings.TrimSpace(text) == "" {
			text = it.Description
		}
		listings = append(listings, Listing{
			Title:    strings.TrimSpace(it.Title),
			URL:      strings.TrimSpace(it.Link),
			Location: feedLocation(it),
			Text:     StripHTML(text),
		})
	}

	return listings, nil
}

// feedLocation returns the value of the first "location:" category.
func feedLocation(it *gofeed.Item) string {
	for _, c := range it.Categories {
		if strings.HasPrefix(strings.ToLower(c), "location:") {
			return strings.TrimSpace(c[len("location:"):])
		}
	}
	return ""
}
