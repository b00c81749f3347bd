package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/experiment"
	"github.com/san-kum/odekit/internal/logging"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	logger    = logging.NoOp()

	preset     string
	configFile string
	dt         float64
	duration   float64
	integrator string
	precision  string
	initState  []float64
	params     map[string]string
	controller string
	atol       float64
	rtol       float64
	dense      bool
	withPlot   bool
	noSave     bool
	workers    int
	levels     int
	component  int
	plotError  bool
	plotWidth  int
	plotHeight int
	gridSpecs  []string
	target     float64
	svgX       int
	svgY       int
	svgOut     string
	trials     int
	perturb    float64
	seed       int64
	bound      float64
)

const maxPlotVars = 6

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "odekit",
		Short: "ode integration lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("data") {
				dataDir = env.DataDir
			}
			if !flags.Changed("log-level") {
				logLevel = env.LogLevel
			}
			if !flags.Changed("log-format") {
				logFormat = env.LogFormat
			}
			logger = logging.NewSlogLogger(logging.ParseLevel(logLevel), logFormat, os.Stderr)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odekit", "data directory (env ODEKIT_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error (env ODEKIT_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "text or json (env ODEKIT_LOG_FORMAT)")

	runCmd := &cobra.Command{
		Use:   "run [equation]",
		Short: "integrate an equation and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&withPlot, "plot", false, "plot the trajectory after the run")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	watchCmd := &cobra.Command{
		Use:   "watch [equation]",
		Short: "integrate with a live progress view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchSimulation,
	}
	addRunFlags(watchCmd)
	watchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	convergeCmd := &cobra.Command{
		Use:   "converge [equation]",
		Short: "measure the observed order of an integrator",
		Args:  cobra.MaximumNArgs(1),
		RunE:  convergeStudy,
	}
	addRunFlags(convergeCmd)
	convergeCmd.Flags().IntVar(&levels, "levels", 5, "number of step halvings")

	compareCmd := &cobra.Command{
		Use:   "compare [equation] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same equation",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	tuneCmd := &cobra.Command{
		Use:   "tune [equation]",
		Short: "grid search run settings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneRun,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=v1,v2,... (dt, atol, rtol or an equation parameter)")
	tuneCmd.Flags().Float64Var(&target, "target", 0, "max error target; 0 minimizes error instead")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	perturbCmd := &cobra.Command{
		Use:   "perturb [equation]",
		Short: "monte carlo study of initial-state perturbations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPerturb,
	}
	addRunFlags(perturbCmd)
	perturbCmd.Flags().IntVar(&trials, "trials", 20, "number of perturbed runs")
	perturbCmd.Flags().Float64Var(&perturb, "perturbation", 1e-3, "max perturbation per component")
	perturbCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	perturbCmd.Flags().Float64Var(&bound, "bound", 0, "stability bound on |x_i| (0 = none)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&component, "component", -1, "state component to plot (-1 = all)")
	plotCmd.Flags().BoolVar(&plotError, "error", false, "plot |x - reference| instead of x")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run as an SVG line plot",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgX, "x", -1, "x axis component (-1 = time)")
	exportSVGCmd.Flags().IntVar(&svgY, "y", 0, "y axis component")
	exportSVGCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [equation]",
		Short: "list equations, integrators and presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, watchCmd, convergeCmd, compareCmd, tuneCmd, batchCmd, perturbCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep (initial step when adaptive)")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.StringVar(&integrator, "integrator", "rk4", "integrator")
	f.StringVar(&precision, "precision", config.DefaultPrecision, "float32 or float64")
	f.Float64SliceVar(&initState, "init", nil, "initial state, comma separated")
	f.StringToStringVar(&params, "param", nil, "equation parameter name=value")
	f.StringVar(&controller, "adaptive", "", "step-size controller (standard or pi)")
	f.Float64Var(&atol, "atol", config.DefaultAtol, "absolute tolerance")
	f.Float64Var(&rtol, "rtol", config.DefaultRtol, "relative tolerance")
	f.BoolVar(&dense, "dense", false, "build dense output for event location")
}

func listPresets(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry[float64]()
	if len(args) == 0 {
		fmt.Println("equations:")
		for _, name := range reg.Equations() {
			fmt.Printf("  %-12s %v\n", name, config.ListPresets(name))
		}
		fmt.Println("integrators:")
		for _, name := range reg.Integrators() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for equation: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		cfg := config.GetPreset(args[0], p)
		mode := fmt.Sprintf("dt=%g", cfg.Dt)
		if cfg.Adaptive != nil {
			mode = cfg.Adaptive.Controller + " adaptive"
		}
		fmt.Printf("  %-12s %s, %s, t=%g\n", p, cfg.Integrator, mode, cfg.Duration)
	}
	return nil
}
