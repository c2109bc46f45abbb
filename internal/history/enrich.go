package history

import (
	"github.com/audiospy/sonifier/internal/indicators"
	"github.com/audiospy/sonifier/internal/model"
)

// EnrichedCandle is a candle plus the indicators the display surface and
// the sonifier consume. Pointer fields are nil until the indicator has
// seen enough data.
type EnrichedCandle struct {
	model.Candle
	EMA9  *float64 `json:"ema_9,omitempty"`
	EMA26 *float64 `json:"ema_26,omitempty"`
	EMA52 *float64 `json:"ema_52,omitempty"`
	RSI   *float64 `json:"rsi,omitempty"`
}

// Enrich computes streaming indicators over an ordered candle sequence.
func Enrich(candles []model.Candle) []EnrichedCandle {
	ema9 := indicators.NewEMA(9)
	ema26 := indicators.NewEMA(26)
	ema52 := indicators.NewEMA(52)
	rsi := indicators.NewRSI(14)

	out := make([]EnrichedCandle, 0, len(candles))
	for _, c := range candles {
		ema9.Add(c.Close)
		ema26.Add(c.Close)
		ema52.Add(c.Close)
		rsi.Add(c.Close)

		e := EnrichedCandle{Candle: c}
		if ema9.Valid() {
			v := ema9.Value()
			e.EMA9 = &v
		}
		if ema26.Valid() {
			v := ema26.Value()
			e.EMA26 = &v
		}
		if ema52.Valid() {
			v := ema52.Value()
			e.EMA52 = &v
		}
		if rsi.Valid() {
			v := rsi.Value()
			e.RSI = &v
		}
		out = append(out, e)
	}
	return out
}
