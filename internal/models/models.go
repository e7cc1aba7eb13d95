package models

import "time"

// Query is the caller-supplied search input for the protected find route.
type Query struct {
	Category  string  `json:"category"`
	Location  string  `json:"location"`
	MinRating float64 `json:"min_rating,omitempty"`
}

// DefaultMinRating applies when the caller omits min_rating.
const DefaultMinRating = 4.0

// Listing is a raw directory entry before license and review enrichment.
type Listing struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Website    string   `json:"website,omitempty"`
	Categories []string `json:"categories,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
}

// Provider is a fully enriched, ranked search result.
type Provider struct {
	Name                string   `json:"name"`
	LicenseNumber       string   `json:"license_number"`
	LicenseStatus       string   `json:"license_status"`
	Phone               string   `json:"phone,omitempty"`
	Rating              float64  `json:"rating"`
	ReviewCount         int      `json:"review_count"`
	Verified            bool     `json:"verified"`
	Address             string   `json:"address,omitempty"`
	Website             string   `json:"website,omitempty"`
	BoardURL            string   `json:"board_url,omitempty"`
	QuickBooksCertified bool     `json:"quickbooks_certified,omitempty"`
	Services            []string `json:"services,omitempty"`
}

// FindResult is the domain payload for a fulfilled find request. Payment
// confirmation fields are filled in by the gate after the handler succeeds.
type FindResult struct {
	Query       Query      `json:"query"`
	Results     []Provider `json:"results"`
	Count       int        `json:"count"`
	DataSources []string   `json:"data_sources"`
	Timestamp   time.Time  `json:"timestamp"`

	PaymentStatus  string `json:"payment_status,omitempty"`
	PaymentAmount  string `json:"payment_amount,omitempty"`
	PaymentNetwork string `json:"payment_network,omitempty"`
}
