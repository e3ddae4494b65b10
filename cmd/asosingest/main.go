package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/asosingest/internal/config"
	"github.com/lox/asosingest/internal/httputil"
	"github.com/lox/asosingest/internal/ingest"
	"github.com/lox/asosingest/internal/logging"
	"github.com/lox/asosingest/internal/metrics"
	"github.com/lox/asosingest/internal/slot"
	"github.com/lox/asosingest/internal/stations"
	"github.com/lox/asosingest/internal/storage"
	"github.com/lox/asosingest/internal/store"
	"github.com/lox/asosingest/internal/table"
)

const appName = "asosingest"

type cli struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`

	config.Config `embed:""`

	Run      runCmd      `cmd:"" default:"withargs" help:"Ingest one hourly slot into object storage."`
	Inspect  inspectCmd  `cmd:"" help:"Print the stored Parquet object for a slot."`
	History  historyCmd  `cmd:"" help:"List recent runs from the audit ledger."`
	Payloads payloadsCmd `cmd:"" help:"List or print the raw station responses of a ledger run."`
}

// app carries what every command needs.
type app struct {
	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name(appName),
		kong.Description("Hourly ASOS observation ingestion into Parquet on S3."),
		kong.UsageOnError(),
	)

	level, err := c.Level()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, c.AppEnv, level, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&app{ctx: ctx, cfg: c.Config, logger: logger})
	stop()
	if err != nil {
		slog.Error("run failed", "command", kctx.Command(), "err", err)
		os.Exit(1)
	}
}

type runCmd struct{}

func (r *runCmd) Run(a *app) error {
	cfg := a.cfg
	if cfg.PushgatewayURL != "" {
		defer pushMetrics(a.logger, cfg.PushgatewayURL)
	}

	if err := cfg.ValidateIngest(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	s, err := slot.New(cfg.RequestDate, cfg.RequestHour)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	objects, err := newObjectStore(cfg)
	if err != nil {
		return err
	}

	client := ingest.NewASOSClient(cfg.DataKey, cfg.APIURL, httputil.NewClient(cfg.HTTPTimeout), a.logger)
	in := ingest.NewIngestor(client, objects, stations.Default, cfg.S3Directory, a.logger)

	if cfg.AuditDB != "" {
		ledger, err := store.Open(cfg.AuditDB)
		if err != nil {
			a.logger.Warn("audit ledger unavailable", "path", cfg.AuditDB, "err", err)
		} else {
			defer ledger.Close()
			in.SetLedger(ledger)
		}
	}

	a.logger.Info("starting ingestion",
		"slot", s.String(),
		"bucket", cfg.S3Bucket,
		"stations", len(stations.Default),
	)

	res, err := in.Run(a.ctx, s)
	if err != nil {
		return err
	}
	if res.Skipped {
		a.logger.Info("already processed", "key", res.Key)
		return nil
	}
	a.logger.Info("done", "key", res.Key, "rows", res.Rows)
	return nil
}

type inspectCmd struct{}

func (i *inspectCmd) Run(a *app) error {
	cfg := a.cfg
	if err := errors.Join(cfg.ValidateStorage(), cfg.ValidateSlot()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	s, err := slot.New(cfg.RequestDate, cfg.RequestHour)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	objects, err := newObjectStore(cfg)
	if err != nil {
		return err
	}

	key := s.Key(cfg.S3Directory)
	body, err := objects.Get(a.ctx, key)
	if err != nil {
		return err
	}
	tbl, err := table.ReadParquet(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.ColumnNames, "\t"))
	for _, row := range tbl.Rows() {
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%d\t%d\t%d\t%s\t%d\t%.1f\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n",
			row.BranchName, row.Temp, row.Rain, row.Snow,
			row.CloudCoverTotal, row.CloudCoverLowMiddle, row.CloudLowest, row.CloudShape,
			row.Humidity, row.WindSpeed, row.WindDirection,
			row.PressureLocal, row.PressureSea, row.PressureVapor, row.DewPoint)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.logger.Info("inspected", "key", key, "rows", tbl.Len())
	return nil
}

type historyCmd struct {
	Limit int `default:"20" help:"Number of runs to show."`
}

func (h *historyCmd) Run(a *app) error {
	if a.cfg.AuditDB == "" {
		return errors.New("config: AUDIT_DB is required for history")
	}
	ledger, err := store.Open(a.cfg.AuditDB)
	if err != nil {
		return err
	}
	defer ledger.Close()

	runs, err := ledger.RecentRuns(h.Limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLOT\tOUTCOME\tSTATIONS\tPAYLOADS\tROWS\tSTARTED\tDURATION\tERROR")
	for _, run := range runs {
		payloads, err := ledger.CountRawPayloads(run.ID)
		if err != nil {
			return err
		}
		duration := "-"
		if run.FinishedAt.Valid {
			duration = run.FinishedAt.Time.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%d\t%sT%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			run.ID, run.Date, run.Hour, run.Outcome, run.StationsFetched, payloads, run.RowsWritten,
			run.StartedAt.Local().Format(time.DateTime), duration, run.ErrorMessage.String)
	}
	return w.Flush()
}

type payloadsCmd struct {
	RunID   int64 `arg:"" name:"run-id" help:"Ledger run id (see history)."`
	Station int   `help:"Print the raw response of this station instead of listing."`
}

func (p *payloadsCmd) Run(a *app) error {
	if a.cfg.AuditDB == "" {
		return errors.New("config: AUDIT_DB is required for payloads")
	}
	ledger, err := store.Open(a.cfg.AuditDB)
	if err != nil {
		return err
	}
	defer ledger.Close()

	payloads, err := ledger.RawPayloads(p.RunID)
	if err != nil {
		return err
	}

	if p.Station != 0 {
		for _, rp := range payloads {
			if rp.StationID != p.Station {
				continue
			}
			body, err := ledger.GetRawPayload(rp.ID)
			if err != nil {
				return fmt.Errorf("payload %d: %w", rp.ID, err)
			}
			_, err = os.Stdout.Write(append(body, '\n'))
			return err
		}
		return fmt.Errorf("run %d has no payload for station %d", p.RunID, p.Station)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATION\tNAME\tFETCHED\tBYTES")
	for _, rp := range payloads {
		name, ok := stations.Default.Name(rp.StationID)
		if !ok {
			name = "?"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\n",
			rp.ID, rp.StationID, name, rp.FetchedAt.Local().Format(time.DateTime), rp.CompressedSize)
	}
	return w.Flush()
}

func newObjectStore(cfg config.Config) (*storage.Store, error) {
	return storage.New(storage.Options{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSKeyAccess,
		SecretKey: cfg.AWSKeySecret,
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.S3Endpoint,
	})
}

// pushMetrics runs at exit so failed runs are reported too.
func pushMetrics(logger *slog.Logger, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, url); err != nil {
		logger.Warn("push metrics", "err", err)
		return
	}
	logger.Debug("metrics pushed", "gateway", url)
}
