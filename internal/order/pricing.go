package order

import (
	"fmt"
	"strings"

	"belleza-be/internal/apperror"
)

// MaxLineQuantity bounds a single merged line.
const MaxLineQuantity = 10000

// mergeLines validates submitted lines and folds duplicate products into one
// line, keeping first-seen order.
func mergeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, ErrItemsRequired
	}

	merged := make([]LineInput, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, l := range lines {
		l.ProductID = strings.TrimSpace(l.ProductID)
		if l.ProductID == "" {
			return nil, ErrProductIDRequired
		}
		if l.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if l.Quantity > MaxLineQuantity {
			return nil, ErrQuantityTooLarge
		}

		i, seen := index[l.ProductID]
		if !seen {
			index[l.ProductID] = len(merged)
			merged = append(merged, l)
			continue
		}

		prev := &merged[i]
		if prev.Price != nil && l.Price != nil && *prev.Price != *l.Price {
			return nil, apperror.Wrap(ErrPriceChanged, fmt.Errorf("conflicting prices for product %s", l.ProductID))
		}
		if prev.Price == nil {
			prev.Price = l.Price
		}
		// Both operands are within the cap, so the sum cannot overflow.
		if prev.Quantity+l.Quantity > MaxLineQuantity {
			return nil, ErrQuantityTooLarge
		}
		prev.Quantity += l.Quantity
	}

	return merged, nil
}

// priceLines re-prices every line from the catalog. The returned items carry
// the catalog price, which is what gets frozen on the order.
func priceLines(lines []LineInput, catalog map[string]CatalogEntry) ([]Item, int64, error) {
	items := make([]Item, 0, len(lines))
	var total int64

	for _, l := range lines {
		entry, ok := catalog[l.ProductID]
		if !ok {
			return nil, 0, apperror.Wrap(ErrProductNotFound, fmt.Errorf("product %s", l.ProductID))
		}
		if !entry.IsActive {
			return nil, 0, apperror.Wrap(ErrProductUnavailable, fmt.Errorf("product %s", l.ProductID))
		}
		if l.Price != nil && *l.Price != entry.Price {
			return nil, 0, apperror.Wrap(ErrPriceChanged,
				fmt.Errorf("product %s: submitted %d, catalog %d", l.ProductID, *l.Price, entry.Price))
		}
		if entry.Stock < l.Quantity {
			return nil, 0, apperror.Wrap(ErrOutOfStock,
				fmt.Errorf("product %s: requested %d, available %d", l.ProductID, l.Quantity, entry.Stock))
		}

		items = append(items, Item{
			ProductID: l.ProductID,
			Title:     entry.Title,
			Quantity:  l.Quantity,
			Price:     entry.Price,
		})
		total += entry.Price * int64(l.Quantity)
	}

	return items, total, nil
}
