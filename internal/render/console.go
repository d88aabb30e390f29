// Package render provides the development renderer: it draws frames to a
// terminal the way the device firmware draws them to its panel. The
// runtime core only depends on display.Renderer, so a real panel driver
// drops in without touching the state machine.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"codeberg.org/mikkl/hwmond/internal/display"
	"codeberg.org/mikkl/hwmond/internal/telemetry"
)

const barWidth = 30

var (
	styleCPU     = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	styleGPU     = lipgloss.NewStyle().Foreground(lipgloss.Color("13")) // magenta
	styleRAM     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleFPS     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleAlert   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleHeading = lipgloss.NewStyle().Bold(true)
	styleClock   = lipgloss.NewStyle().Bold(true)
)

// Console renders frames as ANSI text. Identical consecutive frames are
// skipped so an idle 20 Hz loop does not flood the terminal.
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	last *display.Frame
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Render(frame display.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last != nil && *c.last == frame {
		return nil
	}
	c.last = &frame

	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")

	switch frame.Mode {
	case display.ModeProvisioning:
		c.drawProvisioning(&b, frame)
	case display.ModeBooting:
		c.drawBooting(&b)
	case display.ModeIdle:
		c.drawIdle(&b, frame)
	case display.ModeActive:
		c.drawActive(&b, frame)
	}

	_, err := io.WriteString(c.out, b.String())

	return err
}

func (c *Console) drawProvisioning(b *strings.Builder, frame display.Frame) {
	fmt.Fprintln(b, styleHeading.Render("NETWORK SETUP"))
	fmt.Fprintln(b)
	fmt.Fprintln(b, "Join the hwmond setup network and open the")
	fmt.Fprintln(b, "configuration page to enter your credentials.")
	fmt.Fprintln(b)
	fmt.Fprintln(b, styleDim.Render(frame.TimeText))
}

func (c *Console) drawBooting(b *strings.Builder) {
	fmt.Fprintln(b, styleHeading.Render("HW MON"))
	fmt.Fprintln(b)
	fmt.Fprintln(b, styleDim.Render("starting..."))
}

func (c *Console) drawIdle(b *strings.Builder, frame display.Frame) {
	fmt.Fprintln(b, styleClock.Render(frame.TimeText))
	fmt.Fprintln(b, frame.DateText)
	fmt.Fprintln(b)

	if frame.Environment.Valid {
		fmt.Fprintf(b, "%s  %.1f°C\n", frame.Environment.Condition, frame.Environment.AmbientC)
	}

	fmt.Fprintln(b)
	if frame.Live {
		fmt.Fprintln(b, styleDim.Render("host idle"))
	} else {
		fmt.Fprintln(b, styleDim.Render("host offline ("+frame.Connectivity.String()+")"))
	}
}

func (c *Console) drawActive(b *strings.Builder, frame display.Frame) {
	hw := frame.Telemetry

	header := styleCPU.Render("HW") + styleGPU.Render("MON")
	fmt.Fprintf(b, "%s  %s\n\n", header, styleClock.Render(frame.TimeText))

	switch frame.Page {
	case 0:
		c.drawDashboard(b, hw)
	case 1:
		c.drawTemps(b, hw)
	default:
		c.drawGaming(b, hw)
	}

	if frame.HotAlert {
		fmt.Fprintln(b)
		fmt.Fprintln(b, styleAlert.Render("!! HOT !!"))
	}

	fmt.Fprintf(b, "\n%s\n", styleDim.Render(pageDots(frame.Page)))
}

func (c *Console) drawDashboard(b *strings.Builder, hw telemetry.Record) {
	fmt.Fprintf(b, "CPU %s %3d%%\n", bar(hw.CPU, telemetry.MaxPercent, styleCPU), hw.CPU)
	fmt.Fprintf(b, "GPU %s %3d%%\n", bar(hw.GPU, telemetry.MaxPercent, styleGPU), hw.GPU)
	fmt.Fprintf(b, "RAM %s %3d%%\n", bar(hw.RAM, telemetry.MaxPercent, styleRAM), hw.RAM)

	if hw.FPS > 0 {
		fmt.Fprintf(b, "FPS %s\n", styleFPS.Render(fmt.Sprintf("%d", hw.FPS)))
	} else {
		fmt.Fprintf(b, "FPS %s\n", styleDim.Render("---"))
	}
}

func (c *Console) drawTemps(b *strings.Builder, hw telemetry.Record) {
	fmt.Fprintf(b, "CPU T %s %3d°C\n", bar(hw.CPUTemp, telemetry.MaxPercent, styleCPU), hw.CPUTemp)
	fmt.Fprintf(b, "GPU T %s %3d°C\n", bar(hw.GPUTemp, telemetry.MaxPercent, styleGPU), hw.GPUTemp)
	fmt.Fprintln(b)
	fmt.Fprintf(b, "CPU CLK  %4d MHz\n", hw.CPUClock)
	fmt.Fprintf(b, "GPU CLK  %4d MHz\n", hw.GPUClock)
}

func (c *Console) drawGaming(b *strings.Builder, hw telemetry.Record) {
	if hw.FPS > 0 {
		fmt.Fprintf(b, "%s\n%s\n", styleFPS.Render(fmt.Sprintf("  %d", hw.FPS)), styleDim.Render("  FPS"))
	} else {
		fmt.Fprintf(b, "%s\n", styleDim.Render("  ---"))
	}
	fmt.Fprintln(b)
	fmt.Fprintf(b, "%s  %s\n",
		styleCPU.Render(fmt.Sprintf("CPU %d°C", hw.CPUTemp)),
		styleGPU.Render(fmt.Sprintf("GPU %d°C", hw.GPUTemp)))
}

// bar draws a fixed-width fill bar; values above the scale saturate.
func bar(value, scale int, style lipgloss.Style) string {
	if value < 0 {
		value = 0
	}
	fill := value * barWidth / scale
	if fill > barWidth {
		fill = barWidth
	}

	return style.Render(strings.Repeat("█", fill)) + styleDim.Render(strings.Repeat("░", barWidth-fill))
}

func pageDots(page int) string {
	dots := make([]string, display.NumPages)
	for i := range dots {
		if i == page {
			dots[i] = "●"
		} else {
			dots[i] = "○"
		}
	}

	return strings.Join(dots, " ")
}
