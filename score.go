package noderank

// Scoring constants. A node earns up to 100 points for raw latency and a
// flat consistency bonus when its confirmation latency tracks its average.
const (
	scoreLatencyCeiling  = 100.0
	stabilityBonus       = 20.0
	stabilityBonusWindow = 20.0
)

// Score converts a node's latency measurements into a single comparable
// ranking value.
//
// The latency component is max(0, 100−currentLatencyMs): anything at or
// above 100ms contributes nothing. The stability bonus of 20 applies when
// the confirmation latency is within 20ms of the stability-window average,
// rewarding consistency over a single lucky low reading. The natural
// maximum is 120; no further bound is enforced.
func Score(currentLatencyMs, averageLatencyMs float64) float64 {
	latencyComponent := scoreLatencyCeiling - currentLatencyMs
	if latencyComponent < 0 {
		latencyComponent = 0
	}

	var bonus float64
	diff := currentLatencyMs - averageLatencyMs
	if diff < 0 {
		diff = -diff
	}
	if diff < stabilityBonusWindow {
		bonus = stabilityBonus
	}

	return latencyComponent + bonus
}
