package models

import "time"

// PricePoint is one daily close observation. Within a normalized series
// dates are unique, strictly increasing, and closes are positive.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Bar represents a daily OHLCV record as stored and as fetched from
// upstream market-data APIs.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Point converts a bar to its close-only observation.
func (b Bar) Point() PricePoint {
	return PricePoint{Date: b.Date, Close: b.Close}
}

// Tick is a live last-price update from a streaming source.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"t"` // unix seconds
	Price     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// LatestPrice is the snapshot served by the latest-price endpoint: the last
// stored daily bar, optionally overlaid by a fresher live tick.
type LatestPrice struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Volume float64   `json:"volume"`
	Live   bool      `json:"live"`
}
