package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"domgen/internal/config"
	"domgen/internal/dataset"
	"domgen/internal/domain"
	"domgen/internal/export"
	"domgen/internal/sink"
	"domgen/internal/uploader"
	"domgen/internal/util"

	"gopkg.in/yaml.v3"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	util.SetVerbose(cfg.Logging.Verbose)
	util.Infof("starting domgen (driver=%s table=%s seed=%d)", cfg.Driver, cfg.Table, cfg.Seed)
	if data, err := yaml.Marshal(&cfg); err == nil {
		util.Highlightf("config:\n%s", string(data))
	}

	ctx := context.Background()

	db, err := dataset.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to db: %v\n", err)
		os.Exit(1)
	}
	defer util.CloseWithErr(db, "database")

	provider, err := dataset.NewSQL(ctx, db, cfg.Driver, cfg.Table, cfg.EntityIDColumn, cfg.DKTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load dataset: %v\n", err)
		os.Exit(1)
	}

	eng := domain.New(cfg, provider)
	snk := sink.NewSQL(db, cfg.Driver, cfg.Sink)

	start := time.Now()
	cells, err := eng.Run(ctx, snk)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
	counters := eng.Counters()
	util.Infof("generated domains for %d cell(s) across %d row(s), %d variable(s) modeled",
		counters.Cells, counters.Rows, counters.Variables)

	if !cfg.Export.Enabled {
		return
	}
	if err := exportRun(ctx, cfg, cells, counters, time.Since(start)); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
}

func exportRun(ctx context.Context, cfg config.Config, cells []domain.Cell, counters domain.Counters, elapsed time.Duration) error {
	exp := export.New(cfg.Export.OutputDir, cfg.Export.KeepRaw)
	run, err := exp.NewRun()
	if err != nil {
		return err
	}
	util.Infof("exporting run %s to %s", run.ID, run.Dir)

	if err := exp.WriteDomainCSV(run, cells); err != nil {
		return err
	}
	if err := exp.WritePosValuesCSV(run, sink.ExpandPosValues(cells)); err != nil {
		return err
	}
	name, codec, err := exp.Archive(run)
	if err != nil {
		return err
	}

	summary := export.Summary{
		Seed:         cfg.Seed,
		Driver:       cfg.Driver,
		Table:        cfg.Table,
		Counters:     counters,
		DurationSecs: elapsed.Seconds(),
		ArchiveName:  name,
		ArchiveCodec: codec,
		RunInfo:      cfg.RunInfo,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	if cfg.Storage.CloudEnabled() {
		up := uploader.ForConfig(cfg.Storage)
		if up.Enabled() {
			location, err := up.UploadDir(ctx, run.Dir)
			if err != nil {
				util.Warnf("upload failed: %v", err)
			} else {
				summary.UploadLocation = location
				util.Infof("uploaded run artifacts to %s", location)
			}
		}
	}
	return exp.WriteSummary(run, summary)
}
