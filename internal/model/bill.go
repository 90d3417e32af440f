package model

import "time"

// LineItem is a single priced line embedded in a Bill
type LineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Bill represents an invoice issued by its owner to a customer
type Bill struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"ownerId"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone"`
	CustomerEmail string     `json:"customerEmail"`
	Items         []LineItem `json:"items"`
	TotalAmount   float64    `json:"totalAmount"` // Always ComputeTotal(Items)
	Date          time.Time  `json:"date"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// LineItemInput is a line item as submitted by a client.
// Price is a pointer so that an omitted price can be told apart from 0.
type LineItemInput struct {
	Name     string   `json:"name" validate:"required"`
	Quantity int      `json:"quantity" validate:"gt=0"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
}

// CreateBillRequest is used for creating a new bill
type CreateBillRequest struct {
	CustomerName  string          `json:"customerName" validate:"required"`
	CustomerPhone string          `json:"customerPhone" validate:"required"`
	CustomerEmail string          `json:"customerEmail" validate:"required"`
	Items         []LineItemInput `json:"items" validate:"dive"`
	Date          *time.Time      `json:"date,omitempty"`
}

// ComputeTotal returns the sum of quantity*price over items.
func ComputeTotal(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}
