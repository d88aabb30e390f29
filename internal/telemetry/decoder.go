package telemetry

import (
	"encoding/json"
	"time"
)

// maxLineLength bounds the accumulation buffer. A stuck or noisy transport
// that never sends a terminator gets its partial line dropped.
const maxLineLength = 512

// Decoder turns the raw byte stream into record updates. Bytes accumulate
// until a line terminator, then the line is decoded as one JSON message.
//
// Absent or wrongly typed numeric fields default to zero before clamping,
// per field. This follows the host producer, which always sends the full
// key set; a missing key means the value is genuinely unknown. The time
// and date labels are the exception: they are only overwritten when
// present and non-empty, so a host that omits them leaves the last shown
// labels in place.
type Decoder struct {
	record *Record
	buf    []byte

	decoded    uint64
	discarded  uint64
	lastDecode time.Time
}

func NewDecoder(record *Record) *Decoder {
	return &Decoder{
		record: record,
		buf:    make([]byte, 0, maxLineLength),
	}
}

// Feed consumes available bytes from the transport and decodes any
// complete lines found. It returns the number of records decoded. now is
// recorded as the receipt time of the last successful decode.
func (d *Decoder) Feed(now time.Time, p []byte) int {
	n := 0
	for _, c := range p {
		if c == '\n' || c == '\r' {
			if len(d.buf) > 0 {
				if d.decodeLine(d.buf) {
					d.lastDecode = now
					d.decoded++
					n++
				} else {
					d.discarded++
				}
				d.buf = d.buf[:0]
			}
			continue
		}

		d.buf = append(d.buf, c)
		if len(d.buf) > maxLineLength {
			d.buf = d.buf[:0]
		}
	}

	return n
}

// decodeLine applies one message to the record. Malformed encoding
// discards the whole line; no partial updates occur.
func (d *Decoder) decodeLine(line []byte) bool {
	var msg map[string]any
	if err := json.Unmarshal(line, &msg); err != nil {
		return false
	}

	r := d.record
	r.CPU = numField(msg, "cpu", MaxPercent)
	r.GPU = numField(msg, "gpu", MaxPercent)
	r.RAM = numField(msg, "ram", MaxPercent)
	r.CPUTemp = numField(msg, "cpu_temp", MaxTempC)
	r.GPUTemp = numField(msg, "gpu_temp", MaxTempC)
	r.FPS = numField(msg, "fps", MaxCounter)
	r.CPUClock = numField(msg, "cpu_clk", MaxCounter)
	r.GPUClock = numField(msg, "gpu_clk", MaxCounter)

	if s := textField(msg, "time", TimeLabelMax); s != "" {
		r.TimeLabel = s
	}
	if s := textField(msg, "date", DateLabelMax); s != "" {
		r.DateLabel = s
	}

	return true
}

// LastDecode returns the receipt time of the most recent valid message.
func (d *Decoder) LastDecode() time.Time {
	return d.lastDecode
}

// Decoded returns the count of successfully decoded messages.
func (d *Decoder) Decoded() uint64 {
	return d.decoded
}

// Discarded returns the count of malformed lines dropped.
func (d *Decoder) Discarded() uint64 {
	return d.discarded
}

// numField reads a numeric key, defaulting to zero when absent or not a
// number, then clamps to [0, max].
func numField(msg map[string]any, key string, maxValue int) int {
	v, _ := msg[key].(float64)
	return clamp(int(v), 0, maxValue)
}

// textField reads a string key, truncated to maxLen. Absent, empty or
// non-string values yield "".
func textField(msg map[string]any, key string, maxLen int) string {
	s, _ := msg[key].(string)
	if len(s) > maxLen {
		s = s[:maxLen]
	}

	return s
}
