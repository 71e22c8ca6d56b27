package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tidemark/tidemark/internal/backtest"
	"github.com/tidemark/tidemark/internal/logger"
	"github.com/tidemark/tidemark/internal/strategy/ma_crossover"
)

var (
	wfSymbol string
	wfFrom   string
	wfTo     string
	wfFast   int
	wfSlow   int
	wfTrain  int
	wfTest   int
	wfStep   int
)

var walkforwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Run walk-forward analysis",
	Long:  "Partition the series into rolling train/test windows and backtest each test window independently",
	RunE:  runWalkforwardCmd,
}

func init() {
	walkforwardCmd.Flags().StringVar(&wfSymbol, "symbol", "", "Symbol to backtest (required)")
	walkforwardCmd.Flags().StringVar(&wfFrom, "from", "", "Start date YYYY-MM-DD (required)")
	walkforwardCmd.Flags().StringVar(&wfTo, "to", "", "End date YYYY-MM-DD (required)")
	walkforwardCmd.Flags().IntVar(&wfFast, "fast", ma_crossover.DefaultFastPeriod, "Fast MA period in bars")
	walkforwardCmd.Flags().IntVar(&wfSlow, "slow", ma_crossover.DefaultSlowPeriod, "Slow MA period in bars")
	walkforwardCmd.Flags().IntVar(&wfTrain, "train", 252, "Train window size in bars")
	walkforwardCmd.Flags().IntVar(&wfTest, "test", 63, "Test window size in bars")
	walkforwardCmd.Flags().IntVar(&wfStep, "step", 63, "Step size in bars")

	walkforwardCmd.MarkFlagRequired("symbol")
	walkforwardCmd.MarkFlagRequired("from")
	walkforwardCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(walkforwardCmd)
}

func runWalkforwardCmd(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	fromDate, toDate, err := parseDateRange(wfFrom, wfTo)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	strat, err := ma_crossover.New(wfFast, wfSlow)
	if err != nil {
		return err
	}

	loader, err := buildLoader(cfg, log)
	if err != nil {
		return err
	}
	series, err := loader.Load(cmd.Context(), wfSymbol, fromDate, toDate, "1d")
	if err != nil {
		return err
	}

	bt := backtest.New(backtest.Config{
		InitialCapital:  cfg.Backtest.InitialCapital,
		CommissionPct:   cfg.Backtest.CommissionPct,
		SlippagePct:     cfg.Backtest.SlippagePct,
		PositionSizePct: cfg.Backtest.PositionSizePct,
	}, backtest.WithLogger(log))

	results, err := bt.WalkForward(strat, series, wfTrain, wfTest, wfStep, wfSymbol)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("series too short for the requested windows, no results")
		return nil
	}

	fmt.Printf("walk-forward analysis: %s (%d windows)\n\n", wfSymbol, len(results))
	fmt.Printf("%-12s %-12s %10s %8s %10s\n", "start", "end", "return", "trades", "win rate")
	for _, r := range results {
		fmt.Printf("%-12s %-12s %9.2f%% %8d %9.1f%%\n",
			r.StartDate.Format("2006-01-02"),
			r.EndDate.Format("2006-01-02"),
			r.TotalReturn()*100,
			r.NumTrades(),
			r.WinRate()*100)
	}

	return nil
}
