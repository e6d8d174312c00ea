// Package orders is the demo domain: order notifications fanned out to
// handlers discovered through capability scanning.
package orders

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/getall/framework/capability"
)

// ErrOutOfStock is returned when a reservation exceeds the available stock.
var ErrOutOfStock = errors.New("out of stock")

// OrderPlaced is published once per accepted order.
type OrderPlaced struct {
	ID       string   `json:"id"`
	Customer string   `json:"customer"`
	Total    float64  `json:"total"`
	SKUs     []string `json:"skus"`
}

// RevenueQuery asks the ledger for the booked revenue.
type RevenueQuery struct{}

// Revenue is the answer to RevenueQuery.
type Revenue struct {
	Orders int     `json:"orders"`
	Total  float64 `json:"total"`
}

// Module declares the order handlers for discovery.
func Module() *capability.Module {
	return capability.NewModule("orders",
		capability.Abstract[Auditor](),
		capability.Provide(NewSendReceipt),
		capability.Provide(NewReserveStock),
		capability.Type[Ledger](),
	)
}

// ── Shared services ───────────────────────────────────────────────────────────

// Trail is the audit trail shared by every Auditor.
type Trail struct {
	mu      sync.Mutex
	entries []string
}

func (t *Trail) add(entry string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
}

// Entries returns the recorded entries in order.
func (t *Trail) Entries() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.entries)
}

// Inventory reserves stock for orders.
type Inventory interface {
	Reserve(ctx context.Context, sku string) error
}

// MemoryInventory is an in-process Inventory.
type MemoryInventory struct {
	mu    sync.Mutex
	stock map[string]int
}

func NewMemoryInventory(stock map[string]int) *MemoryInventory {
	m := &MemoryInventory{stock: make(map[string]int, len(stock))}
	for sku, n := range stock {
		m.stock[sku] = n
	}
	return m
}

func (m *MemoryInventory) Reserve(_ context.Context, sku string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stock[sku] <= 0 {
		return fmt.Errorf("orders: reserve %s: %w", sku, ErrOutOfStock)
	}
	m.stock[sku]--
	return nil
}

// Available returns the remaining stock for sku.
func (m *MemoryInventory) Available(sku string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[sku]
}

// Books accumulates booked revenue.
type Books struct {
	mu     sync.Mutex
	orders int
	total  float64
}

func (b *Books) book(total float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders++
	b.total += total
}

func (b *Books) revenue() Revenue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Revenue{Orders: b.orders, Total: b.total}
}

// ── Handlers ──────────────────────────────────────────────────────────────────

// Auditor is the base of handlers that write to the audit trail.
type Auditor struct {
	Trail *Trail `inject:""`
}

func (a *Auditor) Record(format string, args ...any) {
	a.Trail.add(fmt.Sprintf(format, args...))
}

// SendReceipt logs a receipt for the customer.
type SendReceipt struct {
	Auditor
	log *zap.Logger
}

func NewSendReceipt(log *zap.Logger, trail *Trail) *SendReceipt {
	return &SendReceipt{Auditor: Auditor{Trail: trail}, log: log}
}

func (h *SendReceipt) Handle(_ context.Context, n OrderPlaced) error {
	h.log.Info("receipt sent", zap.String("order", n.ID), zap.String("customer", n.Customer))
	h.Record("receipt %s", n.ID)
	return nil
}

// ReserveStock reserves every SKU of the order.
type ReserveStock struct {
	Auditor
	inventory Inventory
}

func NewReserveStock(inventory Inventory, trail *Trail) *ReserveStock {
	return &ReserveStock{Auditor: Auditor{Trail: trail}, inventory: inventory}
}

func (h *ReserveStock) Handle(ctx context.Context, n OrderPlaced) error {
	for _, sku := range n.SKUs {
		if err := h.inventory.Reserve(ctx, sku); err != nil {
			return err
		}
	}
	h.Record("reserved %s", n.ID)
	return nil
}

// Ledger books revenue and answers revenue queries.
type Ledger struct {
	Books *Books `inject:""`
}

func (l *Ledger) Handle(_ context.Context, n OrderPlaced) error {
	l.Books.book(n.Total)
	return nil
}

func (l *Ledger) HandleRequest(_ context.Context, _ RevenueQuery) (Revenue, error) {
	return l.Books.revenue(), nil
}
