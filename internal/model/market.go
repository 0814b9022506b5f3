package model

import "time"

// Quote is the latest simulated price of a symbol. Change is the last step in percent.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PricePoint is one sample of the price history chart.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
