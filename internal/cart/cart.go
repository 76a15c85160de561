// Package cart keeps a browser's intended purchases. The list is a
// point-in-time copy of product data taken when an item is added; prices and
// names are not refreshed until checkout turns the list into an order.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"junkmart/web/internal/models"
	"junkmart/web/internal/storage"
)

const (
	Key = "cart"

	unknownShop = "Unknown Shop"
)

var ErrItemNotFound = errors.New("cart item not found")

type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     *string         `json:"image"`
	ShopName  string          `json:"shopName"`
	ShopID    *string         `json:"shopId"`
	Quantity  int             `json:"quantity"`
}

func (l LineItem) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Summary struct {
	Items     []LineItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}

// Cart is safe for concurrent use within one process. Two processes writing
// the same storage key race and the last write wins.
type Cart struct {
	mu    sync.Mutex
	store storage.Store
	items []LineItem
	log   zerolog.Logger
}

// Load reads the persisted list. Absent or unreadable data yields an empty
// cart.
func Load(ctx context.Context, store storage.Store, log zerolog.Logger) *Cart {
	c := &Cart{store: store, log: log}

	var items []LineItem
	if err := storage.GetJSON(ctx, store, Key, &items); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("stored cart unreadable, starting empty")
		}
		items = nil
	}

	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		c.items = append(c.items, item)
	}
	return c
}

func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LineItem(nil), c.items...)
}

// Add merges into an existing line for the same product, otherwise appends a
// snapshot of p. Quantities below one count as one.
func (c *Cart) Add(ctx context.Context, p models.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := append([]LineItem(nil), c.items...)
	if i := indexOf(next, p.ID); i >= 0 {
		next[i].Quantity += quantity
	} else {
		next = append(next, snapshot(p, quantity))
	}
	return c.commit(ctx, next)
}

// UpdateQuantity shifts a line's quantity by delta, never below one.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, productID)
	if i < 0 {
		return ErrItemNotFound
	}

	next := append([]LineItem(nil), c.items...)
	next[i].Quantity = max(1, next[i].Quantity+delta)
	return c.commit(ctx, next)
}

func (c *Cart) Remove(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]LineItem, 0, len(c.items))
	for _, item := range c.items {
		if item.ProductID != productID {
			next = append(next, item)
		}
	}
	return c.commit(ctx, next)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(ctx, []LineItem{})
}

func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotal(c.items)
}

func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return itemCount(c.items)
}

func (c *Cart) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := append([]LineItem{}, c.items...)
	return Summary{
		Items:     items,
		Subtotal:  subtotal(items),
		ItemCount: itemCount(items),
	}
}

// commit persists the full list before adopting it.
func (c *Cart) commit(ctx context.Context, next []LineItem) error {
	if err := storage.SetJSON(ctx, c.store, Key, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

func snapshot(p models.Product, quantity int) LineItem {
	item := LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ShopName:  unknownShop,
		Quantity:  quantity,
	}
	if len(p.Images) > 0 {
		image := p.Images[0]
		item.Image = &image
	}
	if p.Shop != nil && p.Shop.Name != "" {
		item.ShopName = p.Shop.Name
	}
	shopID := p.ShopID
	if p.Shop != nil && p.Shop.ID != "" {
		shopID = p.Shop.ID
	}
	if shopID != "" {
		item.ShopID = &shopID
	}
	return item
}

func indexOf(items []LineItem, productID string) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return total
}

func itemCount(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
