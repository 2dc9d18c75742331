package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tamirms/collide"
	collideerrors "github.com/tamirms/collide/errors"
	"github.com/tamirms/collide/internal/config"
	"github.com/tamirms/collide/internal/logging"
	"github.com/tamirms/collide/internal/render"
)

type runFlags struct {
	total            int
	workers          int
	batchSize        int
	buckets          int
	exponent         int
	tolerance        float64
	maxBatches       int
	progressInterval int
	source           string
	seed             uint64
	length           int
	file             string
	exec             string
	format           string
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a population and verify it",
		Long: `Generate identifiers in parallel and run the uniqueness, count,
distribution and charset checks over the combined population.

Flags override values from --config. The command exits non-zero when any
check fails.

Examples:
  collide run                                  # 1,176,490 ids from crypto/rand
  collide run --total 100000 --workers 8
  collide run --source seeded --seed 42 --format json
  collide run --source file --file ids.txt
  collide run --source exec --exec "idgen --count {count}"
  collide run -- idgen --count {count} --sep ", "

--exec is split on whitespace and does not honor quotes. To pass arguments
that contain spaces, give the command after "--" instead; that selects the
exec source unless --source says otherwise.
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && cmd.ArgsLenAtDash() != 0 {
				return fmt.Errorf("unexpected argument %q; put the exec command after --", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, g, f)
		},
	}

	d := config.Default()
	fl := cmd.Flags()
	fl.IntVar(&f.total, "total", d.Total, "identifiers to generate across all workers")
	fl.IntVar(&f.workers, "workers", d.Workers, "parallel workers (0 = one per CPU)")
	fl.IntVar(&f.batchSize, "batch-size", d.BatchSize, "largest batch requested from the source")
	fl.IntVar(&f.buckets, "buckets", d.Buckets, "histogram buckets over the keyspace")
	fl.IntVar(&f.exponent, "exponent", d.KeyspaceExponent, "keyspace exponent k, for [0, 36^k)")
	fl.Float64Var(&f.tolerance, "tolerance", d.Tolerance, "allowed relative bucket deviation")
	fl.IntVar(&f.maxBatches, "max-batches", d.MaxBatches, "batch cap per worker (0 = unbounded)")
	fl.IntVar(&f.progressInterval, "progress-interval", d.ProgressInterval, "log progress every N identifiers per worker (0 = off)")
	fl.StringVar(&f.source, "source", d.Source.Kind, "identifier source: random, seeded, file or exec")
	fl.Uint64Var(&f.seed, "seed", d.Source.Seed, "seed for the seeded source")
	fl.IntVar(&f.length, "length", d.Source.Length, "identifier length for generated sources")
	fl.StringVar(&f.file, "file", "", "identifier dump for the file source")
	fl.StringVar(&f.exec, "exec", "", "command for the exec source, split on whitespace; {count} is replaced by the batch size")
	fl.StringVar(&f.format, "format", d.Format, "report format: text, json or yaml")
	return cmd
}

// loadRunConfig reads the config file and applies every flag the user set.
// Arguments after "--" are the exec command, verbatim.
func loadRunConfig(cmd *cobra.Command, args []string, g *globalFlags, f *runFlags) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("total") {
		cfg.Total = f.total
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if fl.Changed("buckets") {
		cfg.Buckets = f.buckets
	}
	if fl.Changed("exponent") {
		cfg.KeyspaceExponent = f.exponent
	}
	if fl.Changed("tolerance") {
		cfg.Tolerance = f.tolerance
	}
	if fl.Changed("max-batches") {
		cfg.MaxBatches = f.maxBatches
	}
	if fl.Changed("progress-interval") {
		cfg.ProgressInterval = f.progressInterval
	}
	if fl.Changed("source") {
		cfg.Source.Kind = f.source
	}
	if fl.Changed("seed") {
		cfg.Source.Seed = f.seed
	}
	if fl.Changed("length") {
		cfg.Source.Length = f.length
	}
	if fl.Changed("file") {
		cfg.Source.Path = f.file
	}
	if fl.Changed("exec") {
		cfg.Source.Command = strings.Fields(f.exec)
	}
	if len(args) > 0 {
		cfg.Source.Command = args
		if !fl.Changed("source") {
			cfg.Source.Kind = config.SourceExec
		}
	}
	if fl.Changed("format") {
		cfg.Format = f.format
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string, g *globalFlags, f *runFlags) error {
	cfg, err := loadRunConfig(cmd, args, g, f)
	if err != nil {
		return err
	}

	logger := logging.Setup(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)

	factory, closeSource, err := cfg.SourceFactory()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Warn("close source", "error", err)
		}
	}()

	opts := append(cfg.Options(), collide.WithLogger(logger))
	if cfg.ProgressInterval > 0 {
		opts = append(opts, collide.WithProgress(cfg.ProgressInterval, func(p collide.Progress) {
			logger.Info("progress",
				"worker", p.Worker,
				"collected", p.Collected,
				"target", p.Target,
				"percent", fmt.Sprintf("%.1f", 100*float64(p.Collected)/float64(p.Target)))
		}))
	}

	logger.Info("starting run",
		"total", cfg.Total,
		"workers", len(collide.Shares(cfg.Total, cfg.EffectiveWorkers())),
		"source", cfg.Source.Kind)

	report, err := collide.Run(cmd.Context(), factory, cfg.Total, opts...)
	if err != nil {
		return err
	}
	if err := render.Write(cmd.OutOrStdout(), report, cfg.Format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if failed := report.Failures(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, c := range failed {
			names[i] = string(c.Name)
		}
		return fmt.Errorf("%w: %s", collideerrors.ErrChecksFailed, strings.Join(names, ", "))
	}
	return nil
}
