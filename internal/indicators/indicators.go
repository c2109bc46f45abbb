// Package indicators provides the streaming technical indicators the
// candle surface exposes: exponential moving averages and Wilder RSI.
package indicators

// EMA is a streaming exponential moving average. The first `period`
// values seed it with their simple average.
type EMA struct {
	period int
	k      float64

	seedSum float64
	count   int
	value   float64
}

// NewEMA creates an EMA over the given period.
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		k:      2.0 / float64(period+1),
	}
}

// Add feeds the next value.
func (e *EMA) Add(v float64) {
	e.count++
	if e.count <= e.period {
		e.seedSum += v
		if e.count == e.period {
			e.value = e.seedSum / float64(e.period)
		}
		return
	}
	e.value = v*e.k + e.value*(1-e.k)
}

// Valid reports whether enough values have been seen.
func (e *EMA) Valid() bool {
	return e.count >= e.period
}

// Value returns the current average. Only meaningful once Valid.
func (e *EMA) Value() float64 {
	return e.value
}

// RSI is a streaming relative strength index with Wilder smoothing.
type RSI struct {
	period int

	prev    float64
	hasPrev bool
	count   int

	gainSum, lossSum float64 // seed accumulation
	avgGain, avgLoss float64
}

// NewRSI creates an RSI over the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Add feeds the next close.
func (r *RSI) Add(v float64) {
	if !r.hasPrev {
		r.prev = v
		r.hasPrev = true
		return
	}

	change := v - r.prev
	r.prev = v

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	r.count++
	if r.count <= r.period {
		r.gainSum += gain
		r.lossSum += loss
		if r.count == r.period {
			r.avgGain = r.gainSum / float64(r.period)
			r.avgLoss = r.lossSum / float64(r.period)
		}
		return
	}

	n := float64(r.period)
	r.avgGain = (r.avgGain*(n-1) + gain) / n
	r.avgLoss = (r.avgLoss*(n-1) + loss) / n
}

// Valid reports whether enough changes have been seen.
func (r *RSI) Valid() bool {
	return r.count >= r.period
}

// Value returns the current RSI in [0, 100]. Only meaningful once Valid.
func (r *RSI) Value() float64 {
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
