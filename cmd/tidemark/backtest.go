package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tidemark/tidemark/internal/backtest"
	"github.com/tidemark/tidemark/internal/logger"
	"github.com/tidemark/tidemark/internal/storage/archive"
	"github.com/tidemark/tidemark/internal/strategy/ma_crossover"
)

var (
	backtestSymbol  string
	backtestFrom    string
	backtestTo      string
	backtestFast    int
	backtestSlow    int
	backtestCapital float64
	backtestCSV     string
	backtestArchive bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy backtest",
	Long:  "Run the MA crossover strategy against historical data and print performance statistics",
	RunE:  runBacktestCmd,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().IntVar(&backtestFast, "fast", ma_crossover.DefaultFastPeriod, "Fast MA period in bars")
	backtestCmd.Flags().IntVar(&backtestSlow, "slow", ma_crossover.DefaultSlowPeriod, "Slow MA period in bars")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 0, "Initial capital (overrides config)")
	backtestCmd.Flags().StringVar(&backtestCSV, "csv", "", "Write the trade list to a CSV file")
	backtestCmd.Flags().BoolVar(&backtestArchive, "archive", false, "Archive the result to the configured storage")

	backtestCmd.MarkFlagRequired("symbol")
	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	fromDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if toDate.Before(fromDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	return fromDate, toDate, nil
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	fromDate, toDate, err := parseDateRange(backtestFrom, backtestTo)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	strat, err := ma_crossover.New(backtestFast, backtestSlow)
	if err != nil {
		return err
	}

	loader, err := buildLoader(cfg, log)
	if err != nil {
		return err
	}
	series, err := loader.Load(cmd.Context(), backtestSymbol, fromDate, toDate, "1d")
	if err != nil {
		return err
	}

	btCfg := backtest.Config{
		InitialCapital:  cfg.Backtest.InitialCapital,
		CommissionPct:   cfg.Backtest.CommissionPct,
		SlippagePct:     cfg.Backtest.SlippagePct,
		PositionSizePct: cfg.Backtest.PositionSizePct,
	}
	if backtestCapital > 0 {
		btCfg.InitialCapital = backtestCapital
	}

	result, err := backtest.New(btCfg, backtest.WithLogger(log)).Run(strat, series, backtestSymbol)
	if err != nil {
		return err
	}

	fmt.Print(result.Summary())

	if backtestCSV != "" {
		f, err := os.Create(backtestCSV)
		if err != nil {
			return fmt.Errorf("creating csv file: %w", err)
		}
		defer f.Close()
		if err := result.WriteTradesCSV(f); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		log.Info("trade list written", zap.String("path", backtestCSV))
	}

	if backtestArchive {
		store, err := buildArchive(cfg)
		if err != nil {
			return err
		}
		base, err := archive.SaveResult(cmd.Context(), store, result)
		if err != nil {
			return fmt.Errorf("archiving result: %w", err)
		}
		log.Info("result archived", zap.String("path", base))
	}

	return nil
}
