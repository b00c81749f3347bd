package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/experiment"
)

const (
	frameInterval = 33 * time.Millisecond
	historyLen    = 60
	barWidth      = 36
)

type progressMsg struct {
	t, end float64
	dt     float64
	steps  int
}

type doneMsg struct {
	report *experiment.Report
	err    error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type watchModel struct {
	cfg      *config.Config
	cancel   context.CancelFunc
	started  time.Time
	elapsed  time.Duration
	t, end   float64
	steps    int
	history  []float64
	report   *experiment.Report
	err      error
	done     bool
	stopping bool
}

func newWatchModel(cfg *config.Config, cancel context.CancelFunc) watchModel {
	return watchModel{
		cfg:     cfg,
		cancel:  cancel,
		started: time.Now(),
		end:     cfg.Duration,
		history: make([]float64, 0, historyLen),
	}
}

func (m watchModel) Init() tea.Cmd { return tick() }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.stopping {
				m.stopping = true
				m.cancel()
			}
		}
		return m, nil
	case progressMsg:
		m.t, m.end, m.steps = msg.t, msg.end, msg.steps
		if msg.dt > 0 {
			m.history = append(m.history, msg.dt)
			if len(m.history) > historyLen {
				m.history = m.history[1:]
			}
		}
		return m, nil
	case doneMsg:
		m.report, m.err, m.done = msg.report, msg.err, true
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Since(m.started)
		return m, tick()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	status := green.Render("● running")
	switch {
	case m.done && m.err != nil:
		status = red.Render("✕ failed")
	case m.done:
		status = green.Render("✓ done")
	case m.stopping:
		status = yellow.Render("○ stopping")
	}
	b.WriteString(fmt.Sprintf("\n   %s  %s\n", cyan.Render(m.cfg.Equation+" / "+m.cfg.Integrator), status))

	frac := 0.0
	if m.end > 0 {
		frac = m.t / m.end
	}
	b.WriteString(fmt.Sprintf("   %s %s  %s\n",
		bar(frac, barWidth),
		dim.Render(fmt.Sprintf("t=%.4g/%.4g", m.t, m.end)),
		dim.Render(fmt.Sprintf("%d steps  %v", m.steps, m.elapsed.Round(time.Millisecond)))))

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s  %s\n",
			dim.Render("dt"),
			cyan.Render(sparkline(m.history, 24)),
			dim.Render(fmt.Sprintf("%.3g", m.history[len(m.history)-1]))))
	}

	if m.done && m.err != nil {
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
	}
	if !m.done {
		b.WriteString("\n" + dim.Render("   q stop") + "\n")
	}
	return b.String()
}

// Watch runs cfg while drawing its progress. Quitting cancels the run;
// the partial report and the cancellation error are returned.
func Watch(ctx context.Context, cfg *config.Config, opts ...experiment.Option) (*experiment.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWatchModel(cfg, cancel))

	go func() {
		var (
			last  time.Time
			prevT float64
			steps int
		)
		progress := func(t, end float64) {
			dt := t - prevT
			prevT = t
			if dt > 0 {
				steps++
			}
			if now := time.Now(); now.Sub(last) >= frameInterval || t >= end {
				last = now
				p.Send(progressMsg{t: t, end: end, dt: dt, steps: steps})
			}
		}
		runOpts := append(append([]experiment.Option{}, opts...), experiment.WithProgress(progress))
		rep, err := experiment.Run(ctx, cfg, runOpts...)
		p.Send(doneMsg{report: rep, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(watchModel)
	return m.report, m.err
}
