// Package pipeline runs one complete pass: load the input tables, relate
// every dataset to every funding entity and write the configured outputs.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/fundlink/am"
	"github.com/teranos/fundlink/db"
	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/export"
	"github.com/teranos/fundlink/ixgest"
	"github.com/teranos/fundlink/logger"
	"github.com/teranos/fundlink/metrics"
	"github.com/teranos/fundlink/relate"
	"github.com/teranos/fundlink/similarity"
)

// Options adjusts a Runner.
type Options struct {
	// Port replaces the configured similarity provider.
	Port similarity.Port
	// Observers receive every match in addition to the log and metrics observers.
	Observers []relate.Observer
	Logger    *zap.SugaredLogger
	Now       func() time.Time
}

// Outcome describes a finished pass.
type Outcome struct {
	RunID    string
	Result   *relate.Result
	Summary  relate.Summary
	Ingest   *ixgest.IngestResult
	Files    []string
	Stored   bool
	Duration time.Duration
}

// Runner executes passes with a fixed configuration. Metrics and the
// similarity provider live as long as the Runner, so repeated passes in
// watch mode accumulate counters and share one provider.
type Runner struct {
	cfg      *am.Config
	port     similarity.Port
	lazy     *similarity.Lazy
	recorder *metrics.Recorder
	extra    []relate.Observer
	log      *zap.SugaredLogger
	now      func() time.Time
}

// New validates cfg and prepares a Runner.
func New(cfg *am.Config, opts Options) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	r := &Runner{
		cfg:      cfg,
		recorder: metrics.NewRecorder(),
		extra:    opts.Observers,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if r.log == nil {
		r.log = zap.NewNop().Sugar()
	}
	if r.now == nil {
		r.now = time.Now
	}

	if cfg.Semantic.Enabled {
		if opts.Port != nil {
			r.port = opts.Port
		} else {
			r.lazy = similarity.NewLazyPort(cfg.SimilarityOptions(), r.log.Named("similarity"))
			r.port = r.lazy
		}
	}
	return r, nil
}

// Recorder returns the metrics recorder shared by every pass.
func (r *Runner) Recorder() *metrics.Recorder {
	return r.recorder
}

// ProviderConstructed reports whether the embedding provider was built.
func (r *Runner) ProviderConstructed() bool {
	return r.lazy != nil && r.lazy.Constructed()
}

// Paths returns the configured input tables.
func (r *Runner) Paths() ixgest.Paths {
	return ixgest.Paths{
		Datasets: r.cfg.Input.Datasets,
		Programs: r.cfg.Input.Programs,
		Projects: r.cfg.Input.Projects,
		Grants:   r.cfg.Input.Grants,
	}
}

// Run executes one pass.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{RunID: uuid.NewString()}
	ctx = logger.WithRunID(ctx, out.RunID)
	log := r.log.With(logger.FieldsFromContext(ctx)...)
	start := r.now()

	tables, ingest, err := ixgest.NewLoader(r.cfg.ColumnDelimiter(), log.Named("ixgest")).Load(ctx, r.Paths())
	if err != nil {
		return nil, r.fail(start, err)
	}
	out.Ingest = ingest

	observers := append([]relate.Observer{
		relate.NewLogObserver(log.Named("match")),
		r.recorder,
	}, r.extra...)

	opts := []relate.Option{
		relate.WithObserver(relate.Fanout(observers...)),
		relate.WithLogger(r.log.Named("relate")),
	}
	if r.port != nil {
		opts = append(opts, relate.WithSimilarity(r.port))
	}
	evaluator, err := relate.New(r.cfg.RelateConfig(), opts...)
	if err != nil {
		return nil, r.fail(start, err)
	}

	res, err := evaluator.Evaluate(ctx, tables)
	if err != nil {
		return nil, r.fail(start, err)
	}
	out.Result = res
	out.Summary = res.Summarize(len(tables.Datasets))

	if len(r.cfg.Output.Formats) > 0 {
		exporter := export.NewExporter(r.cfg.Output.Dir, r.cfg.Output.Formats, log.Named("export"))
		out.Files, err = exporter.Export(res)
		if err != nil {
			r.discard(out.Files, log)
			return nil, r.fail(start, err)
		}
	}

	if r.cfg.Output.Database.Driver != "" {
		if err := r.store(ctx, out.RunID, start, len(tables.Datasets), res, log); err != nil {
			r.discard(out.Files, log)
			return nil, r.fail(start, err)
		}
		out.Stored = true
	}

	out.Duration = r.now().Sub(start)
	r.recorder.PassSucceeded(res, out.Duration)
	if err := r.writeMetrics(); err != nil {
		r.discard(out.Files, log)
		return nil, err
	}

	log.Infow("Pass complete",
		"program_records", len(res.Programs),
		"project_records", len(res.Projects),
		"grant_records", len(res.Grants),
		"files", len(out.Files),
		logger.FieldDurationMS, out.Duration.Milliseconds(),
	)
	return out, nil
}

func (r *Runner) store(ctx context.Context, runID string, start time.Time, datasets int, res *relate.Result, log *zap.SugaredLogger) error {
	dbCfg := r.cfg.Output.Database
	conn, err := db.OpenWithMigrations(dbCfg.Driver, dbCfg.DSN, log.Named("db"))
	if err != nil {
		return err
	}
	defer conn.Close()

	run := db.Run{ID: runID, CreatedAt: start, Datasets: datasets, Semantic: r.cfg.Semantic.Enabled}
	return db.NewSink(conn, dbCfg.Driver, log.Named("db")).Write(ctx, run, res)
}

// discard removes the files a failed pass already wrote.
func (r *Runner) discard(files []string, log *zap.SugaredLogger) {
	for _, path := range files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnw("Failed to remove output of failed pass",
				logger.FieldFile, path,
				logger.FieldError, err,
			)
		}
	}
}

// fail records a failed pass and returns err.
func (r *Runner) fail(start time.Time, err error) error {
	r.recorder.PassFailed(r.now().Sub(start))
	if merr := r.writeMetrics(); merr != nil {
		r.log.Warnw("Failed to write metrics", logger.FieldError, merr)
	}
	return err
}

func (r *Runner) writeMetrics() error {
	if r.cfg.Output.MetricsFile == "" {
		return nil
	}
	return r.recorder.WriteTextfile(r.cfg.Output.MetricsFile)
}
