package history

import (
	"github.com/shopspring/decimal"

	"github.com/audiospy/sonifier/internal/model"
)

// fixedPriceScale is the upstream feed's fixed-point price denominator.
var fixedPriceScale = decimal.NewFromInt(1_000_000_000)

// candleWire is one record as the upstream REST API sends it: nanosecond
// timestamp, fixed-point prices.
type candleWire struct {
	TsEvent int64 `json:"ts_event"`
	Open    int64 `json:"open"`
	High    int64 `json:"high"`
	Low     int64 `json:"low"`
	Close   int64 `json:"close"`
	Volume  int64 `json:"volume"`
}

// candlesResponse is the REST response envelope.
type candlesResponse struct {
	Candles []candleWire `json:"candles"`
}

// toCandle normalizes one wire record into the domain shape.
func (w candleWire) toCandle() model.Candle {
	return model.Candle{
		Time:   model.UnixSecondsFromNanos(w.TsEvent),
		Open:   descalePrice(w.Open),
		High:   descalePrice(w.High),
		Low:    descalePrice(w.Low),
		Close:  descalePrice(w.Close),
		Volume: w.Volume,
	}
}

// descalePrice converts a fixed-point price to dollars. Decimal division
// keeps the intermediate exact; only the final value is a float.
func descalePrice(raw int64) float64 {
	f, _ := decimal.NewFromInt(raw).Div(fixedPriceScale).Float64()
	return f
}
