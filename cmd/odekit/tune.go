package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/experiment"
	"github.com/san-kum/odekit/internal/export"
	"github.com/san-kum/odekit/internal/optim"
	"github.com/san-kum/odekit/internal/storage"
)

// parseGrid turns name=v1,v2 specs into search axes, in flag order.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("%w: grid %q, want name=v1,v2", dynamo.ErrConfiguration, spec)
		}
		var vals []float64
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: grid %s: %v", dynamo.ErrConfiguration, name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func tuneRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges, experiment.WithLogger(logger))
	if err != nil {
		return err
	}

	objective := optim.MinError()
	goal := "min error"
	if target > 0 {
		objective = optim.CheapestWithin(target)
		goal = fmt.Sprintf("fewest evaluations with error <= %g", target)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("tuning %s on %s: %s\n\n", cfg.Integrator, cfg.Equation, goal)
	res, err := g.Search(ctx, cfg, objective)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\tSCORE\tSTATUS")
	for _, trial := range res.Trials {
		cells := make([]string, len(names))
		for i, name := range names {
			cells[i] = fmt.Sprintf("%g", trial.Params[name])
		}
		status, score := "ok", fmt.Sprintf("%.4g", trial.Score)
		switch {
		case trial.Err != nil:
			status, score = trial.Err.Error(), "-"
		case !trial.Feasible:
			status = "infeasible"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", strings.Join(cells, "\t"), score, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !res.Found() {
		fmt.Println("\nno feasible setting")
		return nil
	}
	keys := make([]string, 0, len(res.Best))
	for k := range res.Best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, res.Best[k])
	}
	fmt.Printf("\nbest: %s (score %.4g)\n", strings.Join(parts, " "), res.Score)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rep, err := st.LoadReport(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if svgOut != "" {
		f, err := os.Create(svgOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	x := export.Time
	if svgX >= 0 {
		x = export.Axis(svgX)
	}
	return export.SVG(out, rep, x, export.Axis(svgY), export.DefaultOptions())
}
