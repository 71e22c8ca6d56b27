package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tidemark/tidemark/internal/api/job"
	"github.com/tidemark/tidemark/internal/api/response"
	"github.com/tidemark/tidemark/internal/backtest"
	"github.com/tidemark/tidemark/internal/collector"
	"github.com/tidemark/tidemark/internal/core"
	"github.com/tidemark/tidemark/internal/metrics"
	"github.com/tidemark/tidemark/internal/strategy"
)

const backtestTimeout = 5 * time.Minute

// BacktestRequest is the request body for starting a backtest.
type BacktestRequest struct {
	Symbol         string         `json:"symbol"`
	Strategy       string         `json:"strategy"`
	Start          string         `json:"start"`
	End            string         `json:"end"`
	Params         map[string]any `json:"params,omitempty"`
	InitialCapital float64        `json:"initial_capital,omitempty"`
}

// BacktestHandler serves async backtest jobs.
type BacktestHandler struct {
	jobStore   *job.Store
	loader     *collector.Loader
	strategies *strategy.Registry
	cfg        backtest.Config
	metrics    *metrics.Registry
	logger     *zap.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(
	jobStore *job.Store,
	loader *collector.Loader,
	strategies *strategy.Registry,
	cfg backtest.Config,
	reg *metrics.Registry,
	logger *zap.Logger,
) *BacktestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacktestHandler{
		jobStore:   jobStore,
		loader:     loader,
		strategies: strategies,
		cfg:        cfg,
		metrics:    reg,
		logger:     logger,
	}
}

// Create starts a new backtest job.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	if req.Symbol == "" || req.Strategy == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	strat, err := h.strategies.Build(req.Strategy, req.Params)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	j := h.jobStore.Create("backtest")
	jobID := j.ID
	status := j.Status

	go h.runBacktest(jobID, strat, req, start, end)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": status,
	})
}

// runBacktest executes the backtest and updates job status. Every job gets
// a fresh Backtester: instances are not safe for concurrent runs.
func (h *BacktestHandler) runBacktest(
	jobID string,
	strat strategy.Strategy,
	req BacktestRequest,
	start, end time.Time,
) {
	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})
	if h.metrics != nil {
		h.metrics.JobStarted()
		defer h.metrics.JobFinished()
	}

	began := time.Now()
	result, err := h.execute(strat, req, start, end)

	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordBacktest(strat.Name(), "failed", time.Since(began))
		}
		h.logger.Warn("backtest job failed",
			zap.String("job_id", jobID), zap.Error(err))
		h.jobStore.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = core.WrapError(core.ErrStrategyFailed, err)
		})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordBacktest(strat.Name(), "complete", time.Since(began))
	}
	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Progress = 100
		j.Result = result
	})
}

func (h *BacktestHandler) execute(strat strategy.Strategy, req BacktestRequest, start, end time.Time) (*backtest.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()

	series, err := h.loader.Load(ctx, req.Symbol, start, end, "1d")
	if err != nil {
		return nil, err
	}

	cfg := h.cfg
	if req.InitialCapital > 0 {
		cfg.InitialCapital = req.InitialCapital
	}
	return backtest.New(cfg, backtest.WithLogger(h.logger)).Run(strat, series, req.Symbol)
}

// GetStatus returns the status of a backtest job.
func (h *BacktestHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobStore.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id":   j.ID,
		"status":   j.Status,
		"progress": j.Progress,
	}
	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Error != nil {
		resp["error"] = j.Error.Error()
	}

	response.JSON(w, http.StatusOK, resp)
}
