package codec

// SignalLevel buckets an RSSI reading in dBm into 0..4 bars.
func SignalLevel(rssi int) int {
	switch {
	case rssi < -88:
		return 0
	case rssi < -77:
		return 1
	case rssi < -66:
		return 2
	case rssi < -55:
		return 3
	default:
		return 4
	}
}

// SignalBars renders a signal level as a fixed-width bar string.
func SignalBars(rssi int) string {
	bars := []rune("▂▄▆█")
	level := SignalLevel(rssi)
	out := make([]rune, len(bars))
	for i := range bars {
		if i < level {
			out[i] = bars[i]
		} else {
			out[i] = '·'
		}
	}
	return string(out)
}
