package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kfadel/gridops/app"
	"github.com/kfadel/gridops/config"
	"github.com/kfadel/gridops/infra/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a single pipeline pass and print the results",
	RunE:  analyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func analyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("analyze-command").Errorf("service close: %v", err)
		}
	}()

	res, err := svc.RunOnce(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Units analyzed:  %d\n", res.Attempted)
	fmt.Printf("Forecasts:       %d\n", len(res.Forecasts))
	fmt.Printf("Assessments:     %d\n", len(res.Assessments))
	for _, a := range res.Assessments {
		fmt.Printf("  %-6s score %.3f (%s)\n", a.UnitID, a.Score, a.Level)
	}
	fmt.Printf("Plans:           %d (%d enhanced, %d fallback)\n", len(res.Plans), res.Enhanced, res.FallbackUsed)
	for _, p := range res.Plans {
		fmt.Printf("  %s -> %s via %s: %.1f kW, risk %.3f -> %.3f\n",
			p.FromName, p.ToName, p.SwitchName, p.TransferKW, p.RiskBefore, p.RiskAfter)
		fmt.Printf("    %s\n", p.Narrative.Summary)
	}
	if len(res.Failures) > 0 {
		fmt.Printf("Failures:        %d\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Printf("  %s [%s]: %s\n", f.UnitID, f.Stage, f.Reason())
		}
	}
	return nil
}
