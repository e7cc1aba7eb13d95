// Command seed fabricates directory listings and loads them into Redis for
// the live data source. It stands in for the scraping pipeline the data was
// originally collected with.
package main

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"finderworks/x402-finder/internal/app/finder"
	"finderworks/x402-finder/internal/config"
	"finderworks/x402-finder/internal/logging"
	"finderworks/x402-finder/internal/models"
)

const listingsPerCity = 50

var floridaCities = []string{
	"Miami", "Tampa", "Orlando", "Fort Lauderdale",
	"Jacksonville", "St. Petersburg", "West Palm Beach",
}

var trades = []string{"plumber", "electrician", "roofer", "hvac", "painter"}

func main() {
	cfg := config.NewConfig()

	logger := logging.NewLogger()
	defer logger.Sync()

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Cache.Host, cfg.Cache.Port),
		Password: cfg.Cache.Password,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("redis unavailable", zap.Error(err))
	}

	total := 0
	for _, city := range floridaCities {
		n, err := seedBookkeepers(ctx, rdb, city)
		if err != nil {
			logger.Fatal("seeding bookkeepers failed", zap.String("city", city), zap.Error(err))
		}
		total += n

		for _, trade := range trades {
			n, err := seedTrade(ctx, rdb, city, trade)
			if err != nil {
				logger.Fatal("seeding trade failed",
					zap.String("city", city), zap.String("trade", trade), zap.Error(err))
			}
			total += n
		}
	}

	logger.Info("directory seeded",
		zap.Int("listings", total),
		zap.Int("cities", len(floridaCities)))
}

func seedBookkeepers(ctx context.Context, rdb *redis.Client, city string) (int, error) {
	key := finder.ListingKey("bookkeeper", city)

	for j := 1; j <= listingsPerCity; j++ {
		listing := models.Listing{
			ID:         uuid.New().String(),
			Name:       fmt.Sprintf("%s Bookkeeping Pro %d", city, j),
			Address:    fmt.Sprintf("%d Business Ave, %s, FL", j, city),
			Phone:      fmt.Sprintf("(305) 555-%04d", 1000+j),
			Categories: []string{"Accountant", "Bookkeeper", "Tax", "Payroll"},
			City:       city,
			State:      "FL",
		}

		if err := store(ctx, rdb, key, listing); err != nil {
			return 0, err
		}
	}

	return listingsPerCity, nil
}

func seedTrade(ctx context.Context, rdb *redis.Client, city, trade string) (int, error) {
	key := finder.ListingKey(trade, city)

	for j := 1; j <= listingsPerCity; j++ {
		listing := models.Listing{
			ID:         uuid.New().String(),
			Name:       fmt.Sprintf("%s %s Co %d", city, trade, j),
			Address:    fmt.Sprintf("%d Main St, %s, FL", j, city),
			Phone:      fmt.Sprintf("(305) 555-%04d", 5000+j),
			Categories: []string{trade},
			City:       city,
			State:      "FL",
		}

		if err := store(ctx, rdb, key, listing); err != nil {
			return 0, err
		}
	}

	return listingsPerCity, nil
}

func store(ctx context.Context, rdb *redis.Client, key string, listing models.Listing) error {
	payload, err := sonic.ConfigFastest.Marshal(&listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	return rdb.HSet(ctx, key, listing.ID, payload).Err()
}
