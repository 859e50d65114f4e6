package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/repository/slot"
)

// Store is the cart of one session, persisted in the "cart" slot as a JSON
// list of line items. Concurrent writers are not coordinated; the last write wins.
type Store struct {
	slots    slot.Store
	products productRepo
}

type productRepo interface {
	GetByKey(ctx context.Context, key string) (*domain.Product, error)
}

// New binds a cart to a session's slots. products may be nil when only
// prebuilt line items are added.
func New(slots slot.Store, products productRepo) *Store {
	return &Store{slots: slots, products: products}
}

// View is the cart with its price summary.
type View struct {
	Items []domain.LineItem `json:"items"`
	pricing.Totals
}

func NewView(c domain.Cart) View {
	items := c.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return View{Items: items, Totals: pricing.Summarize(items)}
}

// Load returns the stored cart. A missing or unreadable slot yields an empty
// cart; only storage failures are returned. Stored lines outside the price
// limits are dropped, quantities are clamped into range, and lines that would
// push the total past domain.MaxOrderCents are dropped.
func (s *Store) Load(ctx context.Context) (domain.Cart, error) {
	var items []domain.LineItem
	ok, err := slot.GetJSON(ctx, s.slots, slot.KeyCart, &items)
	if err != nil {
		return domain.Cart{}, err
	}
	if !ok {
		return domain.Cart{}, nil
	}
	cleaned := items[:0]
	for _, item := range items {
		item.Quantity = min(max(item.Quantity, 1), domain.MaxQuantity)
		if item.Valid() != nil {
			continue
		}
		item.Recompute()
		if _, err := pricing.CheckedTotal(append(cleaned, item)); err != nil {
			continue
		}
		cleaned = append(cleaned, item)
	}
	return domain.Cart{Items: cleaned}, nil
}

func (s *Store) Save(ctx context.Context, c domain.Cart) error {
	items := c.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return slot.SetJSON(ctx, s.slots, slot.KeyCart, items)
}

// AddItem appends item to the end of the cart.
func (s *Store) AddItem(ctx context.Context, item domain.LineItem) (domain.Cart, error) {
	if err := item.Valid(); err != nil {
		return domain.Cart{}, err
	}
	item.Recompute()
	c, err := s.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	c.Items = append(c.Items, item)
	if _, err := pricing.CheckedTotal(c.Items); err != nil {
		return domain.Cart{}, err
	}
	if err := s.Save(ctx, c); err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

// AddProduct resolves a catalog product and option and appends it as a new line.
func (s *Store) AddProduct(ctx context.Context, productKey, optionKey string, quantity int) (domain.Cart, error) {
	productKey = strings.TrimSpace(productKey)
	if productKey == "" {
		return domain.Cart{}, domain.ErrProductKeyRequired
	}
	if s.products == nil {
		return domain.Cart{}, errors.New("product repository unavailable")
	}
	product, err := s.products.GetByKey(ctx, productKey)
	if err != nil {
		return domain.Cart{}, err
	}
	item, err := ItemFromProduct(*product, optionKey, quantity)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.AddItem(ctx, item)
}

// ItemFromProduct builds the line item for one product option. The option is
// recorded under "variant" so two options of one product stay separate lines.
func ItemFromProduct(p domain.Product, optionKey string, quantity int) (domain.LineItem, error) {
	opt, ok := p.Option(optionKey)
	if !ok {
		return domain.LineItem{}, fmt.Errorf("option %q of product %q: %w", optionKey, p.Key, domain.ErrNotFound)
	}
	name := p.Name
	if opt.Name != "" {
		name = p.Name + " - " + opt.Name
	}
	return domain.NewLineItem(p.ID, name, opt.PriceCents, quantity, map[string]string{"variant": opt.Key})
}

// ChangeQuantity adds delta to the quantity of the line at index. The result
// never drops below one; use RemoveItem to delete a line. Going above
// domain.MaxQuantity or domain.MaxOrderCents is rejected.
func (s *Store) ChangeQuantity(ctx context.Context, index, delta int) (domain.Cart, error) {
	c, err := s.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	if index < 0 || index >= len(c.Items) {
		return domain.Cart{}, domain.ErrNotFound
	}
	item := &c.Items[index]
	if delta > domain.MaxQuantity-item.Quantity {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	item.Quantity = max(1, item.Quantity+delta)
	item.Recompute()
	if _, err := pricing.CheckedTotal(c.Items); err != nil {
		return domain.Cart{}, err
	}
	if err := s.Save(ctx, c); err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

func (s *Store) RemoveItem(ctx context.Context, index int) (domain.Cart, error) {
	c, err := s.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	if index < 0 || index >= len(c.Items) {
		return domain.Cart{}, domain.ErrNotFound
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	if err := s.Save(ctx, c); err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

// Clear removes the cart slot.
func (s *Store) Clear(ctx context.Context) error {
	return s.slots.Remove(ctx, slot.KeyCart)
}

// ShippingDisclaimerHidden reports whether the session dismissed the shipping notice.
func (s *Store) ShippingDisclaimerHidden(ctx context.Context) (bool, error) {
	var hidden bool
	if _, err := slot.GetJSON(ctx, s.slots, slot.KeyHideShippingDisclaimer, &hidden); err != nil {
		return false, err
	}
	return hidden, nil
}

func (s *Store) SetShippingDisclaimerHidden(ctx context.Context, hidden bool) error {
	return slot.SetJSON(ctx, s.slots, slot.KeyHideShippingDisclaimer, hidden)
}
