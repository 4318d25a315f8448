package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dukerupert/grocerylist/internal/model"
)

// quantity accepts a JSON number or a numeric string. Anything else decodes
// to zero, which the store turns into the default of 1.
type quantity int

func (q *quantity) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			*q = quantity(v)
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*q = quantity(v)
			return nil
		}
	}
	*q = 0
	return nil
}

type itemRequest struct {
	Name     string   `json:"name"`
	Quantity quantity `json:"quantity"`
	Category *string  `json:"category"`
	Bought   bool     `json:"bought"`
}

func (req itemRequest) input() model.ItemInput {
	return model.ItemInput{
		Name:     req.Name,
		Quantity: int(req.Quantity),
		Category: req.Category,
		Bought:   req.Bought,
	}
}
