package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/odekit/internal/analysis"
	"github.com/san-kum/odekit/internal/experiment"
)

func row(name, val string) string {
	return label.Render(name) + value.Render(val)
}

// Report renders the summary of one run.
func Report(rep *experiment.Report) string {
	cfg := rep.Config
	lines := []string{
		title.Render(fmt.Sprintf("%s / %s", cfg.Equation, cfg.Integrator)),
		row("precision", cfg.Precision),
		row("samples", fmt.Sprintf("%d", len(rep.Times))),
		row("steps", fmt.Sprintf("%d", rep.Stats.Steps)),
		row("evaluations", fmt.Sprintf("%d", rep.Stats.Evaluations)),
	}
	if cfg.Adaptive != nil {
		lines = append(lines,
			row("controller", cfg.Adaptive.Controller),
			row("rejected", fmt.Sprintf("%d", rep.Stats.Rejected)),
			row("dt range", fmt.Sprintf("%.3g .. %.3g", rep.Stats.MinStepSize, rep.Stats.MaxStepSize)),
		)
	} else {
		lines = append(lines, row("dt", fmt.Sprintf("%g", cfg.Dt)))
	}
	if n := len(rep.Times); n > 0 {
		lines = append(lines, row("t end", fmt.Sprintf("%.6g", rep.Times[n-1])))
	}

	if rep.MaxError != nil {
		lines = append(lines, row("max error", fmt.Sprintf("%.3e", *rep.MaxError)))
	} else {
		lines = append(lines, label.Render("max error")+dim.Render("n/a (no closed form)"))
	}

	if len(rep.Metrics) > 0 {
		names := make([]string, 0, len(rep.Metrics))
		for name := range rep.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		lines = append(lines, "", header.Render("metrics"))
		for _, name := range names {
			lines = append(lines, row(name, fmt.Sprintf("%.6g", rep.Metrics[name])))
		}
	}

	if len(rep.Events) > 0 {
		lines = append(lines, "", header.Render("events"))
		for _, ev := range rep.Events {
			mark := dim.Render("~")
			if ev.Located {
				mark = green.Render("=")
			}
			line := fmt.Sprintf("%s t%s%.9g  step %d", ev.Name, mark, ev.Time, ev.Step)
			if ev.Terminal {
				line += "  " + yellow.Render("terminal")
			}
			lines = append(lines, "  "+line)
		}
	}

	lines = append(lines, dim.Render(fmt.Sprintf("elapsed %v", rep.Elapsed)))
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Comparison renders one line per integrator.
func Comparison(rows []experiment.Comparison) string {
	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-12s %12s %8s %8s %8s", "integrator", "max error", "steps", "evals", "rejected")))
	b.WriteString("\n")
	for _, r := range rows {
		name := fmt.Sprintf("%-12s", r.Integrator)
		if r.Report == nil {
			b.WriteString(cyan.Render(name) + " " + red.Render(r.Err.Error()) + "\n")
			continue
		}
		errStr := fmt.Sprintf("%12s", "n/a")
		if r.Report.MaxError != nil {
			errStr = fmt.Sprintf("%12.3e", *r.Report.MaxError)
		}
		st := r.Report.Stats
		b.WriteString(cyan.Render(name) + " " + white.Render(errStr) +
			fmt.Sprintf(" %8d %8d %8d", st.Steps, st.Evaluations, st.Rejected))
		if r.Err != nil {
			b.WriteString("  " + red.Render(r.Err.Error()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Study renders a convergence table and the fitted order.
func Study(st analysis.Study) string {
	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-12s %12s %8s", "dt", "max error", "ratio")))
	b.WriteString("\n")
	for i := range st.Steps {
		ratio := ""
		if i > 0 && i-1 < len(st.Ratios) {
			ratio = fmt.Sprintf("%8.2f", st.Ratios[i-1])
		}
		b.WriteString(fmt.Sprintf("%-12.6g %12.3e %8s\n", st.Steps[i], st.Errors[i], ratio))
	}
	order := "n/a"
	if !math.IsNaN(st.Order) {
		order = fmt.Sprintf("%.2f", st.Order)
	}
	b.WriteString(row("observed order", order) + "\n")
	return b.String()
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(sparkChars[idx])
	}
	return sb.String()
}

func bar(frac float64, width int) string {
	if frac < 0 || math.IsNaN(frac) {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", width-filled))
}
