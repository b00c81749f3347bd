package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/odekit/internal/automation"
	"github.com/san-kum/odekit/internal/experiment"
)

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}

	var saveErr error
	onStep := func(i int, o automation.Outcome) {
		status := "ok"
		if o.Err != nil {
			status = o.Err.Error()
		}
		fmt.Printf("step %d/%d %s: %s\n", i+1, len(sc.Steps), o.Name, status)
		if saveErr == nil && o.Report != nil {
			saveErr = saveReport(o.Report)
		}
	}

	outcomes, err := automation.RunScenario(ctx, sc, onStep, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(outcomes))
	}
	return nil
}

func runPerturb(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	mc := automation.MonteCarloConfig{
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
		Bound:        bound,
	}
	fmt.Printf("perturbing %s by ±%g over %d trials\n\n", cfg.Equation, perturb, trials)
	results, err := automation.RunMonteCarlo(ctx, cfg, mc, experiment.WithLogger(logger))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tDEVIATION\tSTABLE")
	for _, r := range results {
		dev := fmt.Sprintf("%.4g", r.Deviation)
		if r.Err != nil {
			dev = r.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%v\n", r.TrialID, dev, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable, maxDev := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d  max deviation: %.4g\n", stable, unstable, maxDev)
	return nil
}
