package telemetry

// Bounds for host-reported values. Out-of-range input is clamped at
// ingestion, never rejected.
const (
	MaxPercent = 100
	MaxTempC   = 120
	MaxCounter = 9999

	TimeLabelMax = 5
	DateLabelMax = 8

	// HotThresholdC is the temperature above which the renderer may show
	// a thermal alert.
	HotThresholdC = 80
)

// Record is the authoritative snapshot of host-reported state. Exactly one
// instance lives in the runtime core; it is overwritten field by field on
// each successful decode and never reset.
type Record struct {
	CPU      int // utilization, percent
	GPU      int // utilization, percent
	RAM      int // utilization, percent
	CPUTemp  int // °C
	GPUTemp  int // °C
	FPS      int
	CPUClock int // MHz
	GPUClock int // MHz

	TimeLabel string
	DateLabel string
}

// NewRecord returns a record with startup placeholders.
func NewRecord() *Record {
	return &Record{TimeLabel: "--:--"}
}

// Active reports whether the host shows a non-zero activity signal.
func (r *Record) Active() bool {
	return r.FPS > 0
}

// Hot reports whether either temperature exceeds the alert threshold.
func (r *Record) Hot() bool {
	return r.CPUTemp > HotThresholdC || r.GPUTemp > HotThresholdC
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}

	if value > maxValue {
		return maxValue
	}

	return value
}
