// Package cart aggregates catalogue products into a pending order for one customer.
package cart

import (
	"sync"

	"restaurant-orders/internal/model"

	"github.com/shopspring/decimal"
)

// Cart is an ordered collection of product lines keyed by product ID. It is never persisted.
type Cart struct {
	mu    sync.Mutex
	lines []model.OrderLine
	index map[string]int
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add puts one unit of product into the cart. A product already present has its quantity
// incremented instead of getting a second line.
func (c *Cart) Add(product model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[product.ID]; ok {
		c.lines[i].Quantity++
		return
	}
	c.index[product.ID] = len(c.lines)
	c.lines = append(c.lines, model.OrderLine{Product: product, Quantity: 1})
}

// Remove deletes the line at position i.
func (c *Cart) Remove(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.lines) {
		return model.ErrCartIndex
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.reindex()
	return nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []model.OrderLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Total returns Σ price × quantity.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.SumLines(c.lines)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.index = make(map[string]int)
}

// snapshot returns the lines and their total read under one lock.
func (c *Cart) snapshot() ([]model.OrderLine, decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]model.OrderLine, len(c.lines))
	copy(lines, c.lines)
	return lines, model.SumLines(lines)
}

// deduct removes the quantities in submitted from the cart. Units added after the snapshot
// was taken stay in the cart.
func (c *Cart) deduct(submitted []model.OrderLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range submitted {
		if i, ok := c.index[line.ID]; ok {
			c.lines[i].Quantity -= line.Quantity
		}
	}
	kept := c.lines[:0]
	for _, line := range c.lines {
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	c.lines = kept
	c.reindex()
}

func (c *Cart) reindex() {
	c.index = make(map[string]int, len(c.lines))
	for i, line := range c.lines {
		c.index[line.ID] = i
	}
}
