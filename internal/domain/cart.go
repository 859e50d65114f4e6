package domain

// LineItem is one product entry in the cart. TotalCents is derived from
// UnitPriceCents and Quantity and is recomputed rather than mutated directly.
type LineItem struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	UnitPriceCents int64             `json:"unitPriceCents"`
	Quantity       int               `json:"quantity"`
	Options        map[string]string `json:"options,omitempty"`
	TotalCents     int64             `json:"totalCents"`
}

// Upper bounds for cart amounts. With these a line total and the order total
// always fit in int64.
const (
	MaxQuantity             = 9999
	MaxUnitPriceCents int64 = 10_000_000_000        // 100 000 000.00
	MaxOrderCents     int64 = 1_000_000_000_000_000 // 10 000 000 000 000.00
)

// NewLineItem builds a LineItem with its total computed.
func NewLineItem(id, name string, unitPriceCents int64, quantity int, options map[string]string) (LineItem, error) {
	item := LineItem{
		ID:             id,
		Name:           name,
		UnitPriceCents: unitPriceCents,
		Quantity:       quantity,
		Options:        options,
	}
	if err := item.Valid(); err != nil {
		return LineItem{}, err
	}
	item.Recompute()
	return item, nil
}

// Valid checks the unit price and quantity against the cart limits.
func (l LineItem) Valid() error {
	if l.UnitPriceCents < 0 || l.UnitPriceCents > MaxUnitPriceCents {
		return ErrInvalidPrice
	}
	if l.Quantity < 1 || l.Quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// Recompute sets TotalCents from the unit price and quantity.
func (l *LineItem) Recompute() {
	l.TotalCents = l.UnitPriceCents * int64(l.Quantity)
}

// Cart is the ordered list of line items; insertion order is display order.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Quantity sums the quantity of every line.
func (c Cart) Quantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Snapshot returns a deep copy of the line items.
func (c Cart) Snapshot() []LineItem {
	out := make([]LineItem, len(c.Items))
	for i, item := range c.Items {
		out[i] = item
		if item.Options != nil {
			opts := make(map[string]string, len(item.Options))
			for k, v := range item.Options {
				opts[k] = v
			}
			out[i].Options = opts
		}
	}
	return out
}
