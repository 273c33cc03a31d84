// Package ats pulls postings from applicant tracking system job boards and
// normalizes them into job postings.
package ats

import (
	"context"
	"fmt"
	"strings"
)

const (
	VendorGreenhouse = "greenhouse"
	VendorLever      = "lever"
	VendorRSS        = "rss"

	defaultLocation = "Not specified"
)

// Vendors lists the supported vendor names.
var Vendors = []string{VendorGreenhouse, VendorLever, VendorRSS}

// Listing is a vendor posting reduced to plain text fields.
type Listing struct {
	Title    string
	URL      string
	Location string
	// Text is the plain text body of the posting.
	Text string
}

// Source fetches the listings of one board from one vendor.
type Source interface {
	Vendor() string
	FetchListings(ctx context.Context, board string) ([]Listing, error)
}

// NewSource returns the source implementation for a vendor name.
func NewSource(vendor string, client *Client) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(vendor)) {
	case VendorGreenhouse:
		return NewGreenhouse(client), nil
	case VendorLever:
		return NewLever(client), nil
	case VendorRSS:
		return NewRSS(client), nil
	default:
		return nil, fmt.Errorf("unsupported vendor: %q", vendor)
	}
}
