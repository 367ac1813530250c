package regionnet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"regionnet/internal/config"
	"regionnet/internal/engine"
	"regionnet/internal/model"
	"regionnet/internal/storage"
)

const defaultDBPath = "regionnet.db"

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

type RunRequest struct {
	Config *config.Config
	RunID  string
	// Steps overrides Config.Run.Steps when > 0.
	Steps int
}

type RunSummary struct {
	RunID     string
	GraphName string
	Steps     int
	Order     []string
	Snapshots int
	// Final holds every output's values after the last step, keyed by
	// "region.output".
	Final map[string][]float64
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// Run builds the configured graph, executes it and records the trace. The
// network is torn down before returning, whatever the outcome.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Config == nil {
		return RunSummary{}, errors.New("run config is required")
	}
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, fmt.Errorf("init store: %w", err)
	}
	cfg := req.Config
	steps := cfg.Run.Steps
	if req.Steps > 0 {
		steps = req.Steps
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	opts := []engine.Option{engine.WithLogger(c.logger)}
	var tr *tracer
	if cfg.Trace.IsEnabled() {
		tr = newTracer(c.store, runID, cfg.Trace.Outputs)
		opts = append(opts, engine.WithObserver(tr.observe))
	}

	n, err := Build(cfg.Graph, opts...)
	if err != nil {
		return RunSummary{}, err
	}
	defer func() {
		if err := n.Close(); err != nil {
			c.logger.Error("regionnet: network teardown failed", "run_id", runID, "error", err)
		}
	}()

	record := model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              runID,
		GraphName:       cfg.Graph.Name,
		Steps:           steps,
		Status:          model.RunStatusRunning,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}

	c.logger.Info("regionnet: run starting", "run_id", runID, "graph", cfg.Graph.Name, "steps", steps)
	if runErr := n.Run(ctx, steps); runErr != nil {
		record.Status = model.RunStatusFailed
		record.Error = runErr.Error()
		record.CompletedSteps = n.Step()
		if err := c.store.SaveRun(context.WithoutCancel(ctx), record); err != nil {
			c.logger.Error("regionnet: failed run not recorded", "run_id", runID, "error", err)
		}
		return RunSummary{}, fmt.Errorf("run %s: %w", runID, runErr)
	}

	order, err := n.ExecutionOrder()
	if err != nil {
		return RunSummary{}, err
	}
	final, err := collectOutputs(n, order)
	if err != nil {
		return RunSummary{}, err
	}

	record.Status = model.RunStatusCompleted
	record.CompletedSteps = n.Step()
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}

	summary := RunSummary{
		RunID:     runID,
		GraphName: cfg.Graph.Name,
		Steps:     steps,
		Order:     order,
		Final:     final,
	}
	if tr != nil {
		summary.Snapshots = tr.recorded
	}
	c.logger.Info("regionnet: run finished", "run_id", runID, "snapshots", summary.Snapshots)
	return summary, nil
}

func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListRuns(ctx)
}

// Trace returns the recorded snapshots of a run ordered by step, region and
// output.
func (c *Client) Trace(ctx context.Context, runID string) ([]model.OutputSnapshot, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if _, ok, err := c.store.GetRun(ctx, runID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return c.store.GetSnapshots(ctx, runID)
}

func collectOutputs(n *engine.Network, order []string) (map[string][]float64, error) {
	final := make(map[string][]float64)
	for _, name := range order {
		region, err := n.Region(name)
		if err != nil {
			return nil, err
		}
		for _, outputName := range region.OutputNames() {
			output, err := region.Output(outputName)
			if err != nil {
				return nil, err
			}
			view, err := output.Data()
			if err != nil {
				return nil, err
			}
			final[name+"."+outputName] = view.Values()
		}
	}
	return final, nil
}
