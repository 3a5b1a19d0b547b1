// Package cart holds the shopper's client-local cart. The operations are
// pure functions over a Cart value; Store persists the result.
package cart

// TaxRate is the display tax shown at checkout, in percent. It is never part
// of the persisted order total.
const TaxRate = 10

type Item struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Cart keeps at most one line per product. Total is derived from Items.
type Cart struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
}

// Product is what the catalog hands to Add.
type Product struct {
	ID    string
	Title string
	Price int64
	Image string
}

func Empty() Cart {
	return Cart{Items: []Item{}}
}

func Total(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}

// Recalculate returns c with Total recomputed.
func Recalculate(c Cart) Cart {
	if c.Items == nil {
		c.Items = []Item{}
	}
	c.Total = Total(c.Items)
	return c
}

func clone(c Cart) Cart {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// Add merges qty into the product's line, appending a new line if absent.
// Non-positive quantities leave the cart unchanged.
func Add(c Cart, p Product, qty int) Cart {
	out := clone(c)
	if qty <= 0 || p.ID == "" {
		return Recalculate(out)
	}

	for i := range out.Items {
		if out.Items[i].ProductID == p.ID {
			out.Items[i].Quantity += qty
			return Recalculate(out)
		}
	}

	out.Items = append(out.Items, Item{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  qty,
	})
	return Recalculate(out)
}

// Normalize folds items through Add, merging duplicate products and
// dropping lines with a non-positive quantity.
func Normalize(items []Item) Cart {
	out := Empty()
	for _, it := range items {
		out = Add(out, Product{ID: it.ProductID, Title: it.Title, Price: it.Price, Image: it.Image}, it.Quantity)
	}
	return out
}

// Update sets a line's quantity. A quantity of zero or less removes the line;
// an unknown product is a no-op.
func Update(c Cart, productID string, qty int) Cart {
	out := clone(c)

	for i := range out.Items {
		if out.Items[i].ProductID != productID {
			continue
		}
		if qty <= 0 {
			out.Items = append(out.Items[:i], out.Items[i+1:]...)
		} else {
			out.Items[i].Quantity = qty
		}
		break
	}
	return Recalculate(out)
}

func Remove(c Cart, productID string) Cart {
	return Update(c, productID, 0)
}

func Clear() Cart {
	return Empty()
}

// Summary is the checkout display breakdown.
type Summary struct {
	ItemCount int   `json:"itemCount"`
	Subtotal  int64 `json:"subtotal"`
	Tax       int64 `json:"tax"`
	Total     int64 `json:"total"`
}

func Summarize(c Cart) Summary {
	s := Summary{Subtotal: Total(c.Items)}
	for _, it := range c.Items {
		s.ItemCount += it.Quantity
	}
	// Rounds half up, matching the storefront display.
	s.Tax = (s.Subtotal*TaxRate + 50) / 100
	s.Total = s.Subtotal + s.Tax
	return s
}
