package order

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSaveAndLoad(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	o := Sample()
	require.NoError(t, Save(ctx, client, o))
	require.NotEmpty(t, o.ID, "an ID is assigned on save")

	assert.True(t, mr.Exists("order:"+o.ID))
	isMember, err := mr.SIsMember(IndexKey, o.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	loaded, err := Load(ctx, client, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o, loaded)
	assert.Equal(t, Item{Quantity: 3, PricePerUnitQuantity: 20}, loaded.Items["soda"])
}

func TestSaveKeepsExplicitID(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	o := Sample()
	o.ID = "fixed-id"
	require.NoError(t, Save(ctx, client, o))

	loaded, err := Load(ctx, client, "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, "Pizza Place", loaded.RestaurantName)
}

func TestLoadMissing(t *testing.T) {
	_, client := newClient(t)

	_, err := Load(context.Background(), client, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorrupt(t *testing.T) {
	mr, client := newClient(t)
	require.NoError(t, mr.Set("order:bad", "{not json"))

	_, err := Load(context.Background(), client, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		o := Sample()
		o.ID = id
		require.NoError(t, Save(ctx, client, o))
	}

	ids, err := List(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Order)
		wantErr bool
	}{
		{name: "sample is valid", mutate: func(o *Order) {}},
		{name: "missing restaurant", mutate: func(o *Order) { o.RestaurantName = "" }, wantErr: true},
		{name: "negative total", mutate: func(o *Order) { o.AmountSpentTotal = -1 }, wantErr: true},
		{name: "bad date", mutate: func(o *Order) { o.DateOfOrder = "07/06/2024" }, wantErr: true},
		{name: "zero quantity", mutate: func(o *Order) { o.Items["pizza"] = Item{Quantity: 0} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Sample()
			tt.mutate(o)
			err := o.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	mr, client := newClient(t)

	o := Sample()
	o.DateOfOrder = ""
	require.Error(t, Save(context.Background(), client, o))
	assert.Empty(t, mr.Keys())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
orders:
  - restaurant_name: Pizza Place
    amount_spent_total: 50.75
    date_of_order: "2024-07-06"
    items:
      pizza:
        quantity: 2
        price_per_unit_quantity: 30
  - order_id: sushi-1
    restaurant_name: Sushi Bar
    amount_spent_total: 32
    date_of_order: "2024-07-08"
`), 0o644))

	orders, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Pizza Place", orders[0].RestaurantName)
	assert.Equal(t, 2, orders[0].Items["pizza"].Quantity)
	assert.Equal(t, "sushi-1", orders[1].ID)
}

func TestReadFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte("orders:\n  - restaurant_name: \"\"\n    date_of_order: \"2024-01-01\"\n"), 0o644))
	_, err = ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order 1")
}
