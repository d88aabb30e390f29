package telemetry_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mikkl/hwmond/internal/telemetry"
)

var t0 = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func feed(d *telemetry.Decoder, s string) int {
	return d.Feed(t0, []byte(s))
}

func TestDecodeFullMessage(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	n := feed(dec, `{"cpu":34,"gpu":61,"ram":48,"cpu_temp":55,"gpu_temp":63,"fps":141,"cpu_clk":4200,"gpu_clk":2580,"time":"14:32","date":"24 Aug"}`+"\n")
	require.Equal(t, 1, n)

	assert.Equal(t, 34, rec.CPU)
	assert.Equal(t, 61, rec.GPU)
	assert.Equal(t, 48, rec.RAM)
	assert.Equal(t, 55, rec.CPUTemp)
	assert.Equal(t, 63, rec.GPUTemp)
	assert.Equal(t, 141, rec.FPS)
	assert.Equal(t, 4200, rec.CPUClock)
	assert.Equal(t, 2580, rec.GPUClock)
	assert.Equal(t, "14:32", rec.TimeLabel)
	assert.Equal(t, "24 Aug", rec.DateLabel)
	assert.Equal(t, t0, dec.LastDecode())
}

func TestDecodeClampsOutOfRange(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	n := feed(dec, `{"cpu":150,"gpu":-3,"cpu_temp":500,"fps":-5,"cpu_clk":20000}`+"\n")
	require.Equal(t, 1, n)

	assert.Equal(t, 100, rec.CPU, "cpu=150 clamps to 100")
	assert.Equal(t, 0, rec.GPU, "negative utilization clamps to 0")
	assert.Equal(t, 120, rec.CPUTemp, "temperature clamps to 120")
	assert.Equal(t, 0, rec.FPS, "fps=-5 stores 0")
	assert.Equal(t, 9999, rec.CPUClock, "clock clamps to 9999")
}

func TestDecodeAbsentFields(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	feed(dec, `{"cpu":50,"fps":60,"time":"10:00","date":"01 Jan"}`+"\n")
	require.Equal(t, 50, rec.CPU)

	// Numeric fields absent from the next message reset to zero; labels
	// retain their previous value.
	n := feed(dec, `{"gpu":70}`+"\n")
	require.Equal(t, 1, n)

	assert.Equal(t, 0, rec.CPU, "absent numeric field defaults to zero")
	assert.Equal(t, 70, rec.GPU)
	assert.Equal(t, 0, rec.FPS)
	assert.Equal(t, "10:00", rec.TimeLabel, "absent time label retained")
	assert.Equal(t, "01 Jan", rec.DateLabel, "absent date label retained")
}

func TestDecodeWrongTypeDefaultsToZero(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	n := feed(dec, `{"cpu":"high","gpu":55,"time":42}`+"\n")
	require.Equal(t, 1, n)

	assert.Equal(t, 0, rec.CPU, "string-typed cpu defaults to zero")
	assert.Equal(t, 55, rec.GPU)
	assert.Equal(t, "--:--", rec.TimeLabel, "non-string time label ignored")
}

func TestDecodeTruncatesLabels(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	feed(dec, `{"time":"14:32:59","date":"24 August 2026"}`+"\n")

	assert.Equal(t, "14:32", rec.TimeLabel)
	assert.Equal(t, "24 Augus", rec.DateLabel)
	assert.Len(t, rec.TimeLabel, telemetry.TimeLabelMax)
	assert.Len(t, rec.DateLabel, telemetry.DateLabelMax)
}

func TestDecodeEmptyLabelRetained(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	feed(dec, `{"time":"09:15"}`+"\n")
	feed(dec, `{"time":""}`+"\n")

	assert.Equal(t, "09:15", rec.TimeLabel, "empty time label retained")
}

func TestMalformedLineLeavesRecordUnchanged(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	feed(dec, `{"cpu":42,"fps":30}`+"\n")
	before := *rec

	n := feed(dec, `{"cpu":99,"fps`+"\n")
	assert.Equal(t, 0, n)
	assert.Equal(t, before, *rec, "malformed line must not touch the record")
	assert.Equal(t, uint64(1), dec.Discarded())
	assert.Equal(t, uint64(1), dec.Decoded())
}

func TestUnknownKeysIgnored(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	n := feed(dec, `{"cpu":10,"bogus":123,"nested":{"a":1}}`+"\n")
	require.Equal(t, 1, n)
	assert.Equal(t, 10, rec.CPU)
}

func TestPartialLineAcrossFeeds(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	assert.Equal(t, 0, feed(dec, `{"cpu":`))
	assert.Equal(t, 1, feed(dec, `25}`+"\n"))
	assert.Equal(t, 25, rec.CPU)
}

func TestCarriageReturnTerminator(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	n := feed(dec, `{"cpu":12}`+"\r\n")
	assert.Equal(t, 1, n)
	assert.Equal(t, 12, rec.CPU)
}

func TestOverflowResetsBuffer(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	feed(dec, `{"cpu":77,"fps":10}`+"\n")

	// More than 512 bytes with no terminator, then a valid line. The noise
	// must be dropped without a decode attempt and the next line must
	// decode cleanly.
	noise := strings.Repeat("x", 600)
	assert.Equal(t, 0, feed(dec, noise))
	assert.Equal(t, uint64(0), dec.Discarded(), "overflow reset is not a decode attempt")

	n := feed(dec, "\n"+`{"cpu":33}`+"\n")
	assert.Equal(t, 1, n)
	assert.Equal(t, 33, rec.CPU)
}

func TestMultipleLinesPerFeed(t *testing.T) {
	rec := telemetry.NewRecord()
	dec := telemetry.NewDecoder(rec)

	n := feed(dec, `{"cpu":1}`+"\n"+`{"cpu":2}`+"\n"+`{"cpu":3}`+"\n")
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, rec.CPU, "last message wins")
}
