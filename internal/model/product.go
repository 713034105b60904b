package model

import (
	"bytes"
	"encoding/json"
)

// Price is a monetary value as sent by the upstream API, which mixes JSON numbers
// and numeric strings. The raw text is kept; parsing happens where it is summed.
type Price string

// UnmarshalJSON accepts a string, a number or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	*p = Price(data)
	return nil
}

// ProductBrief is the slim catalog entry used for scanning and selection.
type ProductBrief struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        Price  `json:"price"`
	Barcode      string `json:"barcode,omitempty"`
	Slug         string `json:"slug,omitempty"`
	QuantityType int    `json:"quantityType,omitempty"`
}

// ProductRef is the product embedded in an order's cart products.
type ProductRef struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        Price  `json:"price"`
	QuantityType int    `json:"quantityType"`
}
