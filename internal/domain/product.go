package domain

import "time"

type Product struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Currency    string          `json:"currency"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Options     []ProductOption `json:"options"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ProductOption is one selectable variant of a product, e.g. complete lamp vs. top only.
type ProductOption struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

// Option looks up a variant by key. An empty key selects the first option.
func (p Product) Option(key string) (ProductOption, bool) {
	if len(p.Options) == 0 {
		return ProductOption{}, false
	}
	if key == "" {
		return p.Options[0], true
	}
	for _, opt := range p.Options {
		if opt.Key == key {
			return opt, true
		}
	}
	return ProductOption{}, false
}
