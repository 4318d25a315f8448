package model

import "time"

// GroceryItem is one row of the grocery list.
type GroceryItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Category  *string   `json:"category"`
	Bought    bool      `json:"bought"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemInput carries the user-editable fields of an item. Bought is only
// honoured on creation; updates go through the toggle operations.
type ItemInput struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Category *string `json:"category"`
	Bought   bool    `json:"bought"`
}

// ImportRecord is the shape the bulk importer inserts.
type ImportRecord struct {
	Name   string
	Bought bool
}

// Summary counts items on the list.
type Summary struct {
	Total  int `json:"total"`
	Bought int `json:"bought"`
}
