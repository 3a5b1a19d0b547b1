package cart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	serum = Product{ID: "p1", Title: "Serum Vitamina C", Price: 2990}
	crema = Product{ID: "p2", Title: "Crema Hidratante", Price: 1890}
)

func TestAdd(t *testing.T) {
	t.Run("Merges quantities per product", func(t *testing.T) {
		c := Add(Empty(), serum, 2)
		c = Add(c, serum, 3)

		require.Len(t, c.Items, 1)
		assert.Equal(t, 5, c.Items[0].Quantity)
		assert.EqualValues(t, 5*2990, c.Total)
	})

	t.Run("Appends new products in order", func(t *testing.T) {
		c := Add(Empty(), serum, 1)
		c = Add(c, crema, 2)

		require.Len(t, c.Items, 2)
		assert.Equal(t, "p1", c.Items[0].ProductID)
		assert.Equal(t, "p2", c.Items[1].ProductID)
		assert.EqualValues(t, 6770, c.Total)
	})

	t.Run("Non-positive quantity is ignored", func(t *testing.T) {
		c := Add(Empty(), serum, 1)
		c = Add(c, serum, 0)
		c = Add(c, crema, -2)

		require.Len(t, c.Items, 1)
		assert.Equal(t, 1, c.Items[0].Quantity)
	})

	t.Run("Does not mutate input", func(t *testing.T) {
		before := Add(Empty(), serum, 1)
		_ = Add(before, serum, 4)
		assert.Equal(t, 1, before.Items[0].Quantity)
	})
}

func TestUpdateAndRemove(t *testing.T) {
	c := Add(Add(Empty(), serum, 2), crema, 1)

	c = Update(c, "p1", 4)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.EqualValues(t, 4*2990+1890, c.Total)

	c = Update(c, "p1", 0)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)

	c = Update(c, "missing", 3)
	assert.Len(t, c.Items, 1)

	c = Remove(c, "p2")
	assert.Empty(t, c.Items)
	assert.EqualValues(t, 0, c.Total)

	assert.Equal(t, Empty(), Clear())
}

func TestTotalInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []Product{serum, crema, {ID: "p3", Price: 990}, {ID: "p4", Price: 15}}
	c := Empty()

	for i := 0; i < 500; i++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(4) {
		case 0:
			c = Add(c, p, rng.Intn(5)-1)
		case 1:
			c = Update(c, p.ID, rng.Intn(6)-2)
		case 2:
			c = Remove(c, p.ID)
		default:
			c = Add(c, p, 1)
		}

		var want int64
		seen := map[string]bool{}
		for _, it := range c.Items {
			assert.False(t, seen[it.ProductID], "duplicate line for %s", it.ProductID)
			assert.Positive(t, it.Quantity)
			seen[it.ProductID] = true
			want += it.Price * int64(it.Quantity)
		}
		require.Equal(t, want, c.Total)
	}
}

func TestSummarize(t *testing.T) {
	c := Add(Add(Empty(), serum, 1), crema, 2)

	s := Summarize(c)
	assert.Equal(t, 3, s.ItemCount)
	assert.EqualValues(t, 6770, s.Subtotal)
	assert.EqualValues(t, 677, s.Tax)
	assert.EqualValues(t, 7447, s.Total)

	// 15 * 10% = 1.5 rounds up.
	s = Summarize(Add(Empty(), Product{ID: "x", Price: 15}, 1))
	assert.EqualValues(t, 2, s.Tax)
}
