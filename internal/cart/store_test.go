package cart

import (
	"encoding/json"
	"errors"
	"testing"

	"belleza-be/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStorage struct{ storage.Store }

func (brokenStorage) Get(string) ([]byte, bool, error) { return nil, false, errors.New("quota") }

func TestStore_Operations(t *testing.T) {
	mem := storage.NewMemoryStore()
	s := NewStore(mem)

	c, err := s.Get()
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = s.Add(serum, 2)
	require.NoError(t, err)
	c, err = s.Add(serum, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Items[0].Quantity)

	raw, ok, err := mem.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"items":[{"productId":"p1","title":"Serum Vitamina C","price":2990,"quantity":5}],"total":14950}`, string(raw))

	c, err = s.Update("p1", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2990, c.Total)

	c, err = s.Remove("p1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = s.Add(crema, 1)
	require.NoError(t, err)
	require.NoError(t, s.Clear())
	c, err = s.Get()
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.EqualValues(t, 0, c.Total)
}

func TestStore_LegacyMigration(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(StorageKey, []byte(`[{"productId":"p1","quantity":1,"title":"X","price":100}]`)))

	c, err := NewStore(mem).Get()
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, Item{ProductID: "p1", Quantity: 1, Title: "X", Price: 100}, c.Items[0])
	assert.EqualValues(t, 100, c.Total)

	raw, _, err := mem.Get(StorageKey)
	require.NoError(t, err)
	var stored map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Contains(t, stored, "items")
	assert.JSONEq(t, `100`, string(stored["total"]))
}

func TestStore_LegacyDuplicatesAreFolded(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(StorageKey, []byte(`[
		{"productId":"p1","quantity":1,"title":"X","price":100},
		{"productId":"p1","quantity":2,"title":"X","price":100},
		{"productId":"p2","quantity":0,"title":"Y","price":50}
	]`)))

	c, err := NewStore(mem).Get()
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p1", c.Items[0].ProductID)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.EqualValues(t, 300, c.Total)

	raw, _, err := mem.Get(StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"productId":"p1","title":"X","price":100,"quantity":3}],"total":300}`, string(raw))
}

func TestStore_EnvelopeIsNormalized(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(StorageKey, []byte(`{"items":[
		{"productId":"p1","quantity":2,"title":"X","price":100},
		{"productId":"p2","quantity":-1,"title":"Y","price":50},
		{"productId":"p1","quantity":1,"title":"X","price":100}
	],"total":0}`)))

	c, err := NewStore(mem).Get()
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	raw, _, err := mem.Get(StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"productId":"p1","title":"X","price":100,"quantity":3}],"total":300}`, string(raw))
}

func TestStore_StaleTotalIsRecomputed(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(StorageKey, []byte(`{"items":[{"productId":"p1","quantity":2,"title":"X","price":100}],"total":9999}`)))

	c, err := NewStore(mem).Get()
	require.NoError(t, err)
	assert.EqualValues(t, 200, c.Total)
}

func TestStore_InvalidDocuments(t *testing.T) {
	for _, doc := range []string{`not json`, `{"items":"nope"}`, `42`} {
		mem := storage.NewMemoryStore()
		require.NoError(t, mem.Set(StorageKey, []byte(doc)))

		c, err := NewStore(mem).Get()
		require.NoError(t, err, doc)
		assert.Empty(t, c.Items, doc)
	}
}

func TestStore_StorageError(t *testing.T) {
	s := NewStore(brokenStorage{storage.NewMemoryStore()})

	_, err := s.Add(serum, 1)
	assert.Error(t, err)
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore(storage.NewMemoryStore())

	var totals []int64
	unsubscribe := s.Subscribe(func(c Cart) { totals = append(totals, c.Total) })
	defer unsubscribe()

	_, err := s.Add(serum, 1)
	require.NoError(t, err)
	_, err = s.Add(crema, 2)
	require.NoError(t, err)
	require.NoError(t, s.Clear())

	assert.Equal(t, []int64{2990, 6770, 0}, totals)
}
