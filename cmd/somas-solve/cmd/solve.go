package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/somasolver/somas/internal/repository"
	"github.com/somasolver/somas/internal/storage"
	"github.com/somasolver/somas/pkg/compression"
	"github.com/somasolver/somas/pkg/config"
	"github.com/somasolver/somas/pkg/export"
	"github.com/somasolver/somas/pkg/ingest"
	"github.com/somasolver/somas/pkg/telemetry"
	"github.com/somasolver/somas/pkg/utils"
	"github.com/somasolver/somas/solver"
)

var (
	workers     int
	verify      bool
	csvDirFlag  string
	traceFlag   string
	compress    string
	uploadToObj bool
)

var solveCmd = &cobra.Command{
	Use:   "solve <tensors.csv>",
	Short: "Solve a tensor lifetime CSV for minimal-peak static offsets",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)

	solveCmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = runtime default)")
	solveCmd.Flags().BoolVar(&verify, "verify", true, "Verify the winning layout before reporting it")
	solveCmd.Flags().StringVar(&csvDirFlag, "csv-dir", "", "Output directory; overrides $CSV_DIR")
	solveCmd.Flags().StringVar(&traceFlag, "trace-name", "", "Output file stem; overrides $TRACE_NAME")
	solveCmd.Flags().StringVar(&compress, "compress", "none", "Output compression: none, gzip, zstd")
	solveCmd.Flags().BoolVar(&uploadToObj, "upload", false, "Upload the output CSV to the configured object storage")
}

func runSolve(cmd *cobra.Command, args []string) error {
	baseLog := GetLogger()
	log := utils.NewSolverLogger(baseLog)
	inputPath := args[0]
	ctx := context.Background()

	portfolioSize := len(solver.AllAlgorithms) * len(solver.AllSortStrategies) * len(solver.AllFitStrategies)
	shutdown, err := telemetry.Init(ctx,
		telemetry.WithPortfolioSize(portfolioSize),
		telemetry.WithWorkers(workers),
	)
	if err != nil {
		log.Warn("telemetry init failed: %v", err)
	} else {
		defer shutdown(ctx)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Exception("%v", err)
		return err
	}

	f, err := os.Open(inputPath)
	if err != nil {
		log.Exception("failed to open %s: %v", inputPath, err)
		return err
	}
	defer f.Close()

	records, err := ingest.ParseCSV(f)
	if err != nil {
		log.Exception("%v", err)
		return err
	}
	log.Info("parsed %d tensor records from %s", len(records), inputPath)

	tensors, model := ingest.BuildModel(ctx, records, workers)
	lowers := make(map[int]int64, len(records))
	uppers := make(map[int]int64, len(records))
	for _, r := range records {
		lowers[r.ID] = r.Lower
		uppers[r.ID] = r.Upper
	}

	timer := utils.NewTimer("solve", utils.WithLogger(baseLog))
	summary, err := solver.Solve(ctx, tensors, model, nil,
		solver.WithWorkers(workers),
		solver.WithVerify(verify),
		solver.WithThresholdBytes(cfg.Solver.ManyObjectsBias),
		solver.WithLogger(baseLog),
		solver.WithTimer(timer),
	)
	if err != nil {
		log.Exception("solve failed: %v", err)
		return err
	}

	dest := export.Destination{
		CSVDir:    firstNonEmpty(csvDirFlag, os.Getenv("CSV_DIR")),
		TraceName: firstNonEmpty(traceFlag, os.Getenv("TRACE_NAME")),
	}
	if dest.CSVDir == "" {
		log.Warn("CSV_DIR not set, skipping output write")
	}
	if dest.TraceName == "" {
		log.Warn("TRACE_NAME not set, skipping output write")
	}

	rows := export.RowsFromTensors(tensors, lowers, uppers)
	opts := export.Options{}
	if comp, err := compression.ForArtifact(compress); err != nil {
		log.Warn("%v, writing uncompressed", err)
	} else {
		opts.Compressor = comp
	}
	if uploadToObj {
		st, err := storage.NewStorage(&cfg.Storage)
		if err != nil {
			log.Warn("storage backend unavailable, skipping upload: %v", err)
		} else {
			opts.Storage = st
		}
	}

	result, err := export.Write(ctx, dest, rows, opts)
	if err != nil {
		log.Exception("export failed: %v", err)
	} else if result.Skipped {
		log.Warn("no output path resolved, csv not written")
	} else {
		log.Info("wrote %d bytes to %s", result.Bytes, result.Path)
		gzipSidecar := opts.Compressor != nil && opts.Compressor.Type() == compression.TypeGzip
		jsonResult, err := export.WriteSummaryJSON(dest, export.SummaryRecordFromSolve(summary), gzipSidecar)
		if err != nil {
			log.Warn("failed to write summary json: %v", err)
		} else if !jsonResult.Skipped {
			log.Info("wrote summary to %s", jsonResult.Path)
		}
	}

	persistSolveRun(ctx, cfg, summary, log)

	return nil
}

// persistSolveRun records the solve outcome in the audit database.
// A database failure here is logged and swallowed: the CLI's contract only
// fails on CSV-open or solver failure, never on audit-logging trouble.
func persistSolveRun(ctx context.Context, cfg *config.Config, summary *solver.Summary, log *utils.SolverLogger) {
	gormDB, err := repository.NewGormDB(&repository.DBConfig{
		Type:     cfg.Database.Type,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		log.Warn("audit database unavailable, skipping persistence: %v", err)
		return
	}

	repos, err := repository.NewRepositories(gormDB, cfg.Database.Type)
	if err != nil {
		log.Warn("failed to initialize repositories: %v", err)
		return
	}
	defer repos.Close()

	run := &repository.SolveRun{
		TraceName:     traceFlag,
		TensorCount:   summary.TensorCount,
		BestBytes:     summary.BestBytes,
		LifelongBytes: summary.LifelongBytes,
		Algorithm:     summary.Algorithm.String(),
		SortStrategy:  summary.Sort.String(),
		FitStrategy:   summary.Fit.String(),
		ElapsedMicros: summary.ElapsedMicros,
		SpreadPercent: summary.SpreadPercent,
		Verified:      summary.Verified,
	}
	if err := repos.SolveRun.Create(ctx, run); err != nil {
		log.Warn("failed to persist solve run: %v", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
