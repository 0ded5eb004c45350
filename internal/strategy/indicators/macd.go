package indicators

// MACD returns the MACD line (EMA fast - EMA slow), its signal line
// (EMA of the MACD line) and the histogram (MACD - signal).
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine, histogram []float64) {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine = EMA(macd, signal)

	histogram = make([]float64, len(closes))
	for i := range closes {
		histogram[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, histogram
}
