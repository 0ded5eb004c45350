package indicators

import (
	"cryptoSignalBot/internal/domain"
)

// Row is one candle enriched with its indicator values.
type Row struct {
	Kline *domain.Kline

	EMAFast       float64
	EMASlow       float64
	RSI           float64
	StochRSI      float64
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64
	BBUpper       float64
	BBMiddle      float64
	BBLower       float64
	VolumeSMA     float64
	VolumeRatio   float64

	// Warm is true once every rolling window feeding the row is full.
	Warm bool
}

// Close is a shorthand for the row's close price.
func (r Row) Close() float64 {
	if r.Kline == nil {
		return 0
	}
	return r.Kline.Close
}

// Frame is aligned index-for-index with the candle series it was computed from.
type Frame struct {
	Rows   []Row
	WarmUp int
}

// WarmRows counts the fully defined rows.
func (f *Frame) WarmRows() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, r := range f.Rows {
		if r.Warm {
			n++
		}
	}
	return n
}

// Ready reports whether the last two rows are both warm, which is what the
// classifier needs. A frame that is not ready means insufficient data.
func (f *Frame) Ready() bool {
	if f == nil || len(f.Rows) < 2 {
		return false
	}
	return f.Rows[len(f.Rows)-2].Warm && f.Rows[len(f.Rows)-1].Warm
}

// LastTwo returns the previous and the latest row.
func (f *Frame) LastTwo() (prev, last Row, ok bool) {
	if !f.Ready() {
		return Row{}, Row{}, false
	}
	n := len(f.Rows)
	return f.Rows[n-2], f.Rows[n-1], true
}

// Last returns the latest row, warm or not.
func (f *Frame) Last() (Row, bool) {
	if f == nil || len(f.Rows) == 0 {
		return Row{}, false
	}
	return f.Rows[len(f.Rows)-1], true
}

// Engine computes indicator frames from candle series.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's indicator periods.
func (e *Engine) Config() Config {
	return e.cfg
}

// RequiredDataPoints returns the minimum number of klines for a Ready frame.
func (e *Engine) RequiredDataPoints() int {
	return e.cfg.WarmUp() + 1
}

// Compute derives the indicator frame for klines. It never fails: short or
// empty input produces a frame that is not Ready.
func (e *Engine) Compute(klines []*domain.Kline) *Frame {
	n := len(klines)
	frame := &Frame{Rows: make([]Row, n), WarmUp: e.cfg.WarmUp()}
	if n == 0 {
		return frame
	}

	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, k := range klines {
		closes[i] = k.Close
		volumes[i] = k.Volume
	}

	emaFast := EMA(closes, e.cfg.EMAFastSpan)
	emaSlow := EMA(closes, e.cfg.EMASlowSpan)
	rsi := RSI(closes, e.cfg.RSIPeriod)
	stoch := StochRSI(rsi, e.cfg.RSIPeriod)
	macd, macdSignal, macdHist := MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	bbUpper, bbMiddle, bbLower := Bollinger(closes, e.cfg.BBPeriod, e.cfg.BBStdDev)
	volSMA, volRatio := VolumeRatio(volumes, e.cfg.VolumePeriod)

	for i := range klines {
		frame.Rows[i] = Row{
			Kline:         klines[i],
			EMAFast:       emaFast[i],
			EMASlow:       emaSlow[i],
			RSI:           rsi[i],
			StochRSI:      stoch[i],
			MACD:          macd[i],
			MACDSignal:    macdSignal[i],
			MACDHistogram: macdHist[i],
			BBUpper:       bbUpper[i],
			BBMiddle:      bbMiddle[i],
			BBLower:       bbLower[i],
			VolumeSMA:     volSMA[i],
			VolumeRatio:   volRatio[i],
			Warm:          i >= frame.WarmUp-1,
		}
	}
	return frame
}
