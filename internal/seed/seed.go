package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Catalog is the demo storefront assortment.
func Catalog() []domain.Product {
	return []domain.Product{
		{
			Key:         "click-and-go-taxi-lamp",
			Name:        "Click & Go",
			Description: "Magnetic taxi roof lamp with quick-release top. Sold as a complete lamp or as a replacement top.",
			Currency:    "NOK",
			ImageURL:    "/images/click-and-go.jpg",
			Options: []domain.ProductOption{
				{Key: "complete", Name: "Complete lamp", PriceCents: 348000},
				{Key: "topOnly", Name: "Top only", PriceCents: 250000},
			},
		},
		{
			Key:         "spare-bulb",
			Name:        "Spare LED bulb",
			Description: "Replacement LED module for the Click & Go lamp.",
			Currency:    "NOK",
			Options: []domain.ProductOption{
				{Key: "single", Name: "Single", PriceCents: 15000},
			},
		},
		{
			Key:         "mounting-kit",
			Name:        "Mounting kit",
			Description: "Cable clips and roof protection pad.",
			Currency:    "NOK",
			Options: []domain.ProductOption{
				{Key: "standard", Name: "Standard", PriceCents: 18800},
			},
		},
	}
}

// Apply upserts the demo catalog. It is idempotent since products are keyed.
func Apply(ctx context.Context, repo ProductWriter) error {
	for _, p := range Catalog() {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	return nil
}
