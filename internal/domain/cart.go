package domain

import "github.com/shopspring/decimal"

// CartLine is one product's entry in a session cart. UnitPrice is the
// catalog price captured when the line was first added.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l CartLine) Cost() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session-scoped mapping from product ID to cart line. It is
// serialized as JSON into the session store under a fixed key.
type Cart struct {
	Lines map[int64]CartLine `json:"lines"`
}

func NewCart() *Cart {
	return &Cart{Lines: make(map[int64]CartLine)}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Len returns the total number of items across all lines.
func (c *Cart) Len() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// Total sums unit_price x quantity over the stored lines in decimal
// arithmetic.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Cost())
	}
	return total
}
