package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/experiment"
	"github.com/san-kum/odekit/internal/storage"
	"github.com/san-kum/odekit/internal/tui"
)

// resolveConfig layers a preset or config file, then explicitly set
// flags, over the defaults.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	equation := ""
	if len(args) > 0 {
		equation = args[0]
	}

	switch {
	case preset != "":
		if equation == "" {
			return nil, fmt.Errorf("%w: --preset needs an equation", dynamo.ErrConfiguration)
		}
		cfg = config.GetPreset(equation, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(equation))
		}
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if equation != "" && equation != cfg.Equation {
			cfg.Equation = equation
			cfg.InitState = nil
			cfg.Params = nil
		}
	default:
		if equation == "" {
			return nil, fmt.Errorf("%w: equation is required", dynamo.ErrConfiguration)
		}
		cfg = config.DefaultConfig()
		cfg.Equation = equation
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("init") {
		cfg.InitState = append([]float64(nil), initState...)
	}
	if len(params) > 0 {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for name, raw := range params {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: param %s=%q: %v", dynamo.ErrConfiguration, name, raw, err)
			}
			cfg.Params[name] = v
		}
	}
	if flags.Changed("adaptive") {
		if cfg.Adaptive == nil {
			cfg.Adaptive = config.DefaultAdaptive()
		}
		cfg.Adaptive.Controller = controller
	}
	if cfg.Adaptive != nil {
		if flags.Changed("atol") {
			cfg.Adaptive.Atol = atol
		}
		if flags.Changed("rtol") {
			cfg.Adaptive.Rtol = rtol
		}
	}
	if flags.Changed("dense") {
		cfg.Dense = dense
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func saveReport(rep *experiment.Report) error {
	if noSave || rep == nil || len(rep.Times) == 0 {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(rep)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s with %s...\n", cfg.Equation, cfg.Integrator)
	rep, runErr := experiment.Run(ctx, cfg, experiment.WithLogger(logger))
	if rep == nil {
		return runErr
	}

	fmt.Println(tui.Report(rep))
	if err := saveReport(rep); err != nil {
		return err
	}
	if withPlot && len(rep.States) > 0 {
		if err := plotReport(rep, component, false); err != nil {
			return err
		}
	}
	return runErr
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	rep, runErr := tui.Watch(ctx, cfg, experiment.WithLogger(logger))
	if rep == nil {
		return runErr
	}
	fmt.Println(tui.Report(rep))
	if err := saveReport(rep); err != nil {
		return err
	}
	return runErr
}

func convergeStudy(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("convergence of %s on %s, dt=%g, %d levels\n\n", cfg.Integrator, cfg.Equation, cfg.Dt, levels)
	st, err := experiment.Converge(ctx, cfg, levels, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Print(tui.Study(st))
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	names := args[1:]
	fmt.Printf("comparing %d integrators on %s\n\n", len(names), cfg.Equation)
	rows, err := experiment.Compare(ctx, cfg, names, workers, experiment.WithLogger(logger))
	if rows != nil {
		fmt.Print(tui.Comparison(rows))
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEQUATION\tINTEG\tPREC\tTIME\tDURATION\tDT\tSTEPS\tMAX ERROR")

	for _, run := range runs {
		maxErr := "-"
		if run.MaxError != nil {
			maxErr = fmt.Sprintf("%.3e", *run.MaxError)
		}
		integ := run.Integrator
		if run.Controller != "" {
			integ += "/" + run.Controller
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2fs\t%.4gs\t%d\t%s\n",
			run.ID,
			run.Equation,
			integ,
			run.Precision,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Stats.Steps,
			maxErr,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rep, err := st.LoadReport(args[0])
	if err != nil {
		return err
	}
	if len(rep.States) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if plotError && !rep.HasReference() {
		return fmt.Errorf("run %s has no reference solution", rep.ID)
	}

	fmt.Printf("run: %s\n", rep.ID)
	fmt.Printf("equation: %s (%s)\n", rep.Config.Equation, rep.Config.Integrator)
	fmt.Printf("samples: %d\n\n", len(rep.States))
	return plotReport(rep, component, plotError)
}

func plotReport(rep *experiment.Report, comp int, errorSeries bool) error {
	numVars := len(rep.States[0])
	first, last := 0, numVars
	if comp >= 0 {
		if comp >= numVars {
			return fmt.Errorf("component %d out of range (dimension %d)", comp, numVars)
		}
		first, last = comp, comp+1
	} else if last > maxPlotVars {
		last = maxPlotVars
	}

	for i := first; i < last; i++ {
		data := rep.Component(i)
		caption := fmt.Sprintf("x%d vs time", i)
		if errorSeries {
			data = finiteOnly(rep.ErrorSeries(i))
			caption = fmt.Sprintf("|x%d - exact| vs time", i)
		}
		if len(data) == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func finiteOnly(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rep, err := st.LoadReport(args[0])
	if err != nil {
		return err
	}
	if len(rep.States) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(os.Stdout, rep)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rep, err := st.LoadReport(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, rep)
}
