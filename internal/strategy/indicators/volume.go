package indicators

// VolumeRatio returns the period SMA of volume and the ratio of each volume to it.
// A zero average leaves the ratio undefined.
func VolumeRatio(volumes []float64, period int) (sma, ratio []float64) {
	sma = SMA(volumes, period)
	ratio = nanSeries(len(volumes))
	for i, avg := range sma {
		if !isFinite(avg) || avg == 0 {
			continue
		}
		ratio[i] = volumes[i] / avg
	}
	return sma, ratio
}
