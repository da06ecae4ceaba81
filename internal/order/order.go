package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

const (
	// KeyPrefix prefixes the key each order is stored under
	KeyPrefix = "order:"
	// IndexKey is the set holding every stored order ID
	IndexKey = "orders"

	// DateLayout is the format of DateOfOrder
	DateLayout = "2006-01-02"
)

// ErrNotFound is returned by Load for unknown order IDs.
var ErrNotFound = errors.New("order not found")

// Item is one line of an order.
type Item struct {
	Quantity             int     `json:"quantity" yaml:"quantity"`
	PricePerUnitQuantity float64 `json:"price_per_unit_quantity" yaml:"price_per_unit_quantity"`
}

// Order is a restaurant order as tracked by dashtrack.
type Order struct {
	ID               string          `json:"order_id" yaml:"order_id,omitempty"`
	RestaurantName   string          `json:"restaurant_name" yaml:"restaurant_name"`
	AmountSpentTotal float64         `json:"amount_spent_total" yaml:"amount_spent_total"`
	DateOfOrder      string          `json:"date_of_order" yaml:"date_of_order"`
	Items            map[string]Item `json:"items" yaml:"items"`
}

// Key returns the store key for the order.
func (o *Order) Key() string {
	return KeyPrefix + o.ID
}

// Validate checks the fields a stored order must have.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.RestaurantName) == "" {
		return errors.New("order has no restaurant name")
	}
	if o.AmountSpentTotal < 0 {
		return fmt.Errorf("order for %s has a negative total", o.RestaurantName)
	}
	if _, err := time.Parse(DateLayout, o.DateOfOrder); err != nil {
		return fmt.Errorf("order for %s has invalid date %q: %w", o.RestaurantName, o.DateOfOrder, err)
	}
	for name, item := range o.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item %s of order for %s has non-positive quantity", name, o.RestaurantName)
		}
	}
	return nil
}

// Save stores the order and adds it to the index in one transaction. An
// order without an ID is given a new UUID.
func Save(ctx context.Context, rdb goredis.Cmdable, o *Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode order %s: %w", o.ID, err)
	}

	_, err = rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, o.Key(), data, 0)
		pipe.SAdd(ctx, IndexKey, o.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", o.ID, err)
	}
	return nil
}

// Load reads an order by ID.
func Load(ctx context.Context, rdb goredis.Cmdable, id string) (*Order, error) {
	data, err := rdb.Get(ctx, KeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}

	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to decode order %s: %w", id, err)
	}
	return &o, nil
}

// List returns the IDs of all stored orders, sorted.
func List(ctx context.Context, rdb goredis.Cmdable) ([]string, error) {
	ids, err := rdb.SMembers(ctx, IndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

type importFile struct {
	Orders []Order `yaml:"orders"`
}

// ReadFile reads a YAML file with a top-level orders list and validates
// every entry.
func ReadFile(path string) ([]Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders from %s: %w", path, err)
	}

	var f importFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse orders from %s: %w", path, err)
	}

	for i := range f.Orders {
		if err := f.Orders[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: order %d: %w", path, i+1, err)
		}
	}
	return f.Orders, nil
}

// Sample returns the order used to verify a store round trip.
func Sample() *Order {
	return &Order{
		RestaurantName:   "Pizza Place",
		AmountSpentTotal: 50.75,
		DateOfOrder:      "2024-07-06",
		Items: map[string]Item{
			"pizza": {Quantity: 2, PricePerUnitQuantity: 30},
			"soda":  {Quantity: 3, PricePerUnitQuantity: 20},
			"salad": {Quantity: 1, PricePerUnitQuantity: 18},
		},
	}
}
