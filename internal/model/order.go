package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pendiente"
	OrderStatusPreparing OrderStatus = "en-preparacion"
	OrderStatusReady     OrderStatus = "listo"
	OrderStatusDelivered OrderStatus = "entregado"
)

// orderPipeline lists the statuses in pipeline order.
var orderPipeline = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range orderPipeline {
		if candidate == s {
			return true
		}
	}
	return false
}

// Next returns the status that follows s in the pipeline. The terminal status maps to itself,
// and unknown statuses are returned unchanged.
func (s OrderStatus) Next() OrderStatus {
	for i, candidate := range orderPipeline {
		if candidate != s {
			continue
		}
		if i == len(orderPipeline)-1 {
			return s
		}
		return orderPipeline[i+1]
	}
	return s
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range orderPipeline {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// OrderLine is a product snapshot copied into an order together with the ordered quantity.
// Later catalogue edits never change it.
type OrderLine struct {
	Product
	Quantity int `json:"cantidad"`
}

// LineTotal returns price × quantity.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Comment is the single customer remark attached to an order.
type Comment struct {
	CustomerUID string    `json:"uid"`
	Text        string    `json:"texto"`
	CreatedAt   time.Time `json:"fecha"`
}

// Order represents a customer order.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CustomerUID string          `json:"uid" db:"customer_uid"`
	Status      OrderStatus     `json:"estado" db:"status"`
	Total       decimal.Decimal `json:"total" db:"total"`
	Items       []OrderLine     `json:"items" db:"items"`
	Comment     *Comment        `json:"comentario,omitempty" db:"comment"`
	CreatedAt   time.Time       `json:"fecha" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// HasComment reports whether a comment is already attached.
func (o *Order) HasComment() bool {
	return o != nil && o.Comment != nil
}

// NewOrder is the payload for creating an order. Status and timestamps are assigned by the store.
type NewOrder struct {
	CustomerUID string
	Items       []OrderLine
	Total       decimal.Decimal
}

// SumLines returns Σ price × quantity over the lines.
func SumLines(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Validate checks the creation invariants of an order.
func (n NewOrder) Validate() error {
	if n.CustomerUID == "" {
		return ErrIdentityRequired
	}
	if len(n.Items) == 0 {
		return ErrEmptyCart
	}
	for _, line := range n.Items {
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	if !n.Total.Equal(SumLines(n.Items)) {
		return ErrTotalMismatch
	}
	return nil
}

// OrderPatch is a free-form partial order update. Nil fields are left untouched.
type OrderPatch struct {
	Status *OrderStatus     `json:"estado,omitempty"`
	Total  *decimal.Decimal `json:"total,omitempty"`
	Items  []OrderLine      `json:"items,omitempty"`
}

// Validate rejects unknown statuses.
func (p OrderPatch) Validate() error {
	if p.Status != nil && !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p OrderPatch) IsEmpty() bool {
	return p.Status == nil && p.Total == nil && p.Items == nil
}

// CanComment reports whether customerUID may attach a comment to the order.
func (o *Order) CanComment(customerUID string) error {
	if o == nil {
		return ErrOrderNotFound
	}
	if o.CustomerUID != customerUID {
		return ErrNotOrderOwner
	}
	if o.HasComment() {
		return ErrCommentExists
	}
	return nil
}
