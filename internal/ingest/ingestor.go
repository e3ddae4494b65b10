package ingest

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lox/asosingest/internal/metrics"
	"github.com/lox/asosingest/internal/models"
	"github.com/lox/asosingest/internal/slot"
	"github.com/lox/asosingest/internal/stations"
	"github.com/lox/asosingest/internal/store"
	"github.com/lox/asosingest/internal/table"
)

// ObjectStore is the subset of object storage the ingestor needs.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, body []byte) error
}

// Result describes a finished run.
type Result struct {
	Key     string
	Skipped bool
	Rows    int
}

// Ingestor runs the hourly pipeline for one slot: idempotency check, one
// request per station, result-code validation, normalization and a single
// Parquet upload.
//
// The existence check is advisory. Two concurrent runs for the same slot can
// both pass it and both write the same key.
type Ingestor struct {
	client    *ASOSClient
	objects   ObjectStore
	directory stations.Directory
	root      string
	ledger    *store.Store
	logger    *slog.Logger
}

func NewIngestor(client *ASOSClient, objects ObjectStore, directory stations.Directory, root string, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		client:    client,
		objects:   objects,
		directory: directory,
		root:      root,
		logger:    logger,
	}
}

// SetLedger enables the audit ledger. Ledger failures are logged and never
// change the outcome of a run.
func (in *Ingestor) SetLedger(ledger *store.Store) {
	in.ledger = ledger
}

func (in *Ingestor) Run(ctx context.Context, s slot.Slot) (Result, error) {
	key := s.Key(in.root)
	logger := in.logger.With("slot", s.String(), "key", key)

	run := in.startRun(logger, s, key)

	res, err := in.run(ctx, logger, s, key, run)
	switch {
	case err != nil:
		metrics.RunsTotal.WithLabelValues(store.OutcomeFailed).Inc()
		in.completeRun(logger, run, store.OutcomeFailed, err)
	case res.Skipped:
		metrics.RunsTotal.WithLabelValues(store.OutcomeSkipped).Inc()
		in.completeRun(logger, run, store.OutcomeSkipped, nil)
	default:
		metrics.RunsTotal.WithLabelValues(store.OutcomeWritten).Inc()
		metrics.RowsWritten.Add(float64(res.Rows))
		in.completeRun(logger, run, store.OutcomeWritten, nil)
	}
	return res, err
}

func (in *Ingestor) run(ctx context.Context, logger *slog.Logger, s slot.Slot, key string, run *models.IngestRun) (Result, error) {
	res := Result{Key: key}

	exists, err := in.objects.Exists(ctx, key)
	if err != nil {
		return res, fmt.Errorf("check existing object: %w", err)
	}
	if exists {
		logger.Info("data already exists in object storage, skipping")
		res.Skipped = true
		return res, nil
	}

	responses, err := in.fetchAll(ctx, logger, s, run)
	if err != nil {
		return res, err
	}

	tbl, err := in.merge(responses)
	if err != nil {
		return res, err
	}

	var buf bytes.Buffer
	if err := tbl.WriteParquet(&buf); err != nil {
		return res, fmt.Errorf("encode parquet: %w", err)
	}
	if err := in.objects.Put(ctx, key, buf.Bytes()); err != nil {
		return res, fmt.Errorf("upload: %w", err)
	}

	res.Rows = tbl.Len()
	if run != nil {
		run.RowsWritten = res.Rows
	}
	logger.Info("merged table written", "rows", res.Rows, "bytes", buf.Len())
	return res, nil
}

// fetchAll requests every station in directory order and validates each
// result code as soon as it arrives. The first failure aborts the run.
func (in *Ingestor) fetchAll(ctx context.Context, logger *slog.Logger, s slot.Slot, run *models.IngestRun) (map[int]*Response, error) {
	responses := make(map[int]*Response, len(in.directory))
	for _, st := range in.directory {
		resp, body, err := in.client.Fetch(ctx, st.ID, s)
		in.storePayload(logger, run, st.ID, body)
		if err != nil {
			return nil, err
		}
		if err := CheckResultCode(st.ID, resp); err != nil {
			logger.Error("bad result code", "station", st.ID,
				"code", resp.Response.Header.ResultCode, "message", resp.Response.Header.ResultMsg)
			return nil, err
		}
		responses[st.ID] = resp
		if run != nil {
			run.StationsFetched++
		}
	}
	logger.Info("fetched all stations", "stations", len(responses))
	return responses, nil
}

// merge normalizes every station's record into the column accumulator.
func (in *Ingestor) merge(responses map[int]*Response) (*table.Table, error) {
	b := table.NewBuilder(len(in.directory))
	for _, st := range in.directory {
		item, err := FirstObservation(st.ID, responses[st.ID])
		if err != nil {
			return nil, err
		}
		obs, err := Normalize(st.Name, item)
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", st.ID, err)
		}
		b.Append(obs)
	}
	return b.Table(), nil
}

func (in *Ingestor) startRun(logger *slog.Logger, s slot.Slot, key string) *models.IngestRun {
	if in.ledger == nil {
		return nil
	}
	run, err := in.ledger.StartRun(s.Date, s.Hour, key)
	if err != nil {
		logger.Warn("ledger: start run", "error", err)
		return nil
	}
	return run
}

func (in *Ingestor) completeRun(logger *slog.Logger, run *models.IngestRun, outcome string, runErr error) {
	if in.ledger == nil || run == nil {
		return
	}
	run.Outcome = outcome
	if runErr != nil {
		run.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	}
	if err := in.ledger.CompleteRun(run); err != nil {
		logger.Warn("ledger: complete run", "error", err)
	}
}

func (in *Ingestor) storePayload(logger *slog.Logger, run *models.IngestRun, stationID int, body []byte) {
	if in.ledger == nil || run == nil || len(body) == 0 {
		return
	}
	if _, err := in.ledger.StoreRawPayload(run.ID, stationID, body); err != nil {
		logger.Warn("ledger: store raw payload", "station", stationID, "error", err)
	}
}
