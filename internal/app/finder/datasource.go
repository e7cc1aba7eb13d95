package finder

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"finderworks/x402-finder/internal/models"
)

// DataSource supplies raw directory listings for a category + location.
// Mock generates deterministic fixtures; Redis reads the seeded directory.
type DataSource interface {
	Name() string
	Search(ctx context.Context, category, location string) ([]models.Listing, error)
}

// MockSource fabricates listings deterministically: the same query always
// yields the same businesses, seeded per business name rather than any
// global randomness.
type MockSource struct{}

func NewMockSource() *MockSource {
	return &MockSource{}
}

func (s *MockSource) Name() string {
	return "Local Database"
}

func (s *MockSource) Search(ctx context.Context, category, location string) ([]models.Listing, error) {
	city := cityOf(location)

	var names []string
	if isBookkeeping(category) {
		for _, prefix := range []string{city, "Elite", "Premier", "Pro"} {
			rng := seededRand(prefix + city + "names")
			kinds := []string{"Accounting", "Bookkeeping", "Tax Services", "Financial", "CPA"}
			names = append(names, fmt.Sprintf("%s %s", prefix, kinds[rng.Intn(len(kinds))]))
		}
	} else {
		trade := titleCase(category)
		names = []string{
			fmt.Sprintf("%s %s Pros", city, trade),
			fmt.Sprintf("Elite %s Services", trade),
			fmt.Sprintf("Premier %s Solutions", trade),
			fmt.Sprintf("%s Masters %s", trade, city),
			fmt.Sprintf("All-Star %s", trade),
		}
	}

	listings := make([]models.Listing, 0, len(names))
	for _, name := range names {
		rng := seededRand(name)

		street := "Main St"
		categories := []string{titleCase(category)}
		if isBookkeeping(category) {
			street = "Business St"
			categories = []string{"Accountant", "Bookkeeper"}
		}

		listings = append(listings, models.Listing{
			ID:         fmt.Sprintf("mock_%05d", rng.Intn(100000)),
			Name:       name,
			Address:    fmt.Sprintf("%d %s, %s", 100+rng.Intn(9900), street, location),
			Phone:      fmt.Sprintf("555-%04d", 1000+rng.Intn(9000)),
			Categories: categories,
			City:       city,
		})
	}

	return listings, nil
}

// RedisSource reads the listing directory loaded by cmd/seed. Listings are
// stored as JSON hash fields under a category+city key.
type RedisSource struct {
	cache *redis.Client
}

func NewRedisSource(cache *redis.Client) *RedisSource {
	return &RedisSource{
		cache: cache,
	}
}

func (s *RedisSource) Name() string {
	return "Listing Directory"
}

// ListingKey is the Redis key holding all listings for a category in a city.
func ListingKey(category, city string) string {
	return fmt.Sprintf("listings:%s:%s", strings.ToLower(category), strings.ToLower(city))
}

func (s *RedisSource) Search(ctx context.Context, category, location string) ([]models.Listing, error) {
	entries, err := s.cache.HGetAll(ctx, ListingKey(category, cityOf(location))).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read listing directory: %w", err)
	}

	listings := make([]models.Listing, 0, len(entries))
	for _, data := range entries {
		var listing models.Listing

		decoder := sonic.ConfigFastest.NewDecoder(bytes.NewReader([]byte(data)))
		if err := decoder.Decode(&listing); err != nil {
			return nil, fmt.Errorf("failed to decode listing: %w", err)
		}

		listings = append(listings, listing)
	}

	return listings, nil
}

// seededRand returns a PRNG seeded from the FNV-1a hash of key, so every
// derived attribute is a pure function of the business name.
func seededRand(key string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(key))

	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func cityOf(location string) string {
	if city, _, ok := strings.Cut(location, ","); ok {
		return strings.TrimSpace(city)
	}

	return strings.TrimSpace(location)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
