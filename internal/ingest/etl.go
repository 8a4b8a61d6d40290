package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/ROAS_GO/internal/models"
	"github.com/AngelCh415/ROAS_GO/internal/pipeline"
	"github.com/AngelCh415/ROAS_GO/internal/telemetry"
)

// File is one uploaded spreadsheet. Name drives format detection.
type File struct {
	Name string
	Data io.Reader
}

// Batch is the set of files for one run.
type Batch struct {
	Cost        []File
	Performance []File
	Names       *File
	Options     pipeline.Options
}

type ETL struct {
	log *slog.Logger
	tel *telemetry.Collector
}

func NewETL(log *slog.Logger, tel *telemetry.Collector) *ETL {
	return &ETL{log: log, tel: tel}
}

// Run decodes the batch and executes one pipeline run. Nothing is kept
// between runs.
func (e *ETL) Run(ctx context.Context, b Batch) (*models.Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := e.log.With(slog.String("run_id", runID))

	res, err := e.run(ctx, b)
	e.tel.ObserveRun(outcome(err), time.Since(start))
	if err != nil {
		log.Warn("pipeline run failed", slog.String("err", err.Error()))
		return nil, err
	}
	res.RunID = runID
	for _, w := range res.Warnings {
		log.Warn("pipeline warning", slog.String("warning", w))
	}
	e.tel.AddWarnings(len(res.Warnings))
	e.tel.AddRows("result", len(res.Rows))
	log.Info("pipeline run complete",
		slog.Int("rows", len(res.Rows)),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("latency", time.Since(start)))
	return res, nil
}

func (e *ETL) run(ctx context.Context, b Batch) (*models.Result, error) {
	var in pipeline.Input
	var err error
	if in.Cost, err = e.readAll(ctx, models.KindCost, b.Cost); err != nil {
		return nil, err
	}
	if in.Performance, err = e.readAll(ctx, models.KindPerformance, b.Performance); err != nil {
		return nil, err
	}
	if b.Names != nil {
		t, err := e.read(ctx, models.KindNames, *b.Names)
		if err != nil {
			return nil, err
		}
		in.Names = t
	}
	return pipeline.Run(in, b.Options)
}

func (e *ETL) readAll(ctx context.Context, kind models.TableKind, files []File) ([]*models.Table, error) {
	out := make([]*models.Table, 0, len(files))
	for _, f := range files {
		t, err := e.read(ctx, kind, f)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (e *ETL) read(ctx context.Context, kind models.TableKind, f File) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := ReadTable(f.Name, f.Data)
	if err != nil {
		return nil, err
	}
	e.tel.AddRows(string(kind), t.Len())
	e.log.Debug("table decoded",
		slog.String("table", string(kind)),
		slog.String("file", f.Name),
		slog.Int("rows", t.Len()),
		slog.Any("columns", t.Columns))
	return t, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeOK
	case errors.Is(err, models.ErrMissingRequiredColumn):
		return telemetry.OutcomeMissingColumn
	case errors.Is(err, models.ErrMalformedInput):
		return telemetry.OutcomeMalformedInput
	case errors.Is(err, models.ErrInvalidOptions):
		return telemetry.OutcomeInvalidOptions
	default:
		return telemetry.OutcomeInternal
	}
}
