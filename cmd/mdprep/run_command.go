package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mdprep/internal/batch"
	"mdprep/internal/config"
	"mdprep/internal/deps"
	"mdprep/internal/history"
	"mdprep/internal/logging"
	"mdprep/internal/pipeline"
	"mdprep/internal/pubchem"
	"mdprep/internal/report"
	"mdprep/internal/services/acpype"
	"mdprep/internal/services/obabel"
	"mdprep/internal/services/resname"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var tableFlag string
	var templateDirFlag string
	var logLevelFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every sample in the work table",
		Long: `Run downloads both compound structures for each sample, converts and
minimizes them, generates GROMACS topologies, and deploys the simulation
templates into the sample directory. Samples whose output files already
exist are skipped, so an interrupted batch can simply be re-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runBatch(cmd, cfg, tableFlag, templateDirFlag, logLevelFlag)
		},
	}

	cmd.Flags().StringVarP(&tableFlag, "table", "t", "", "Work table (CSV) path, overrides the configured default")
	cmd.Flags().StringVar(&templateDirFlag, "template-dir", "", "Template directory override")
	cmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level for this run (debug, info, warn, error)")

	return cmd
}

func runBatch(cmd *cobra.Command, cfg *config.Config, tableFlag, templateDirFlag, logLevelFlag string) error {
	tablePath := cfg.Paths.TablePath
	if strings.TrimSpace(tableFlag) != "" {
		expanded, err := config.ExpandPath(tableFlag)
		if err != nil {
			return fmt.Errorf("resolve table path: %w", err)
		}
		tablePath = expanded
	}
	if strings.TrimSpace(templateDirFlag) != "" {
		expanded, err := config.ExpandPath(templateDirFlag)
		if err != nil {
			return fmt.Errorf("resolve template directory: %w", err)
		}
		cfg.Paths.TemplateDir = expanded
	}
	level := cfg.Logging.Level
	if strings.TrimSpace(logLevelFlag) != "" {
		level = logLevelFlag
	}

	runStamp := time.Now().Format("20060102_150405")
	logger, logPath, err := logging.NewRunLogger(cfg.Paths.LogDir, level, cfg.Logging.Format, runStamp)
	if err != nil {
		return fmt.Errorf("initialize run log: %w", err)
	}

	// Missing tools surface per sample anyway, so the run proceeds.
	if missing := missingTools(cfg); len(missing) > 0 {
		warning := fmt.Sprintf("missing tools: %s (run 'mdprep deps' for details)", strings.Join(missing, ", "))
		logger.Warn(warning)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
	}

	fetcher, err := pubchem.New(cfg.PubChem.BaseURL, time.Duration(cfg.PubChem.TimeoutSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("configure structure service: %w", err)
	}
	converter, err := obabel.New(cfg.Tools.Obabel, cfg.Tools.ConvertTimeout, cfg.Tools.OptimizeTimeout, obabel.MinimizeParams{
		ForceField: cfg.Optimize.ForceField,
		Steps:      cfg.Optimize.Steps,
		Dielectric: cfg.Optimize.Dielectric,
	})
	if err != nil {
		return fmt.Errorf("configure converter: %w", err)
	}
	renamer, err := resname.New(cfg.Tools.Python, cfg.Tools.RenameScript, cfg.Tools.RenameTimeout)
	if err != nil {
		return fmt.Errorf("configure residue renamer: %w", err)
	}
	topologizer, err := acpype.New(cfg.Tools.Conda, cfg.Tools.CondaEnv, cfg.Tools.AcpypeTimeout, acpype.Params{
		ChargeMethod: cfg.Acpype.ChargeMethod,
		AtomType:     cfg.Acpype.AtomType,
		NetCharge:    cfg.Acpype.NetCharge,
	})
	if err != nil {
		return fmt.Errorf("configure topology generator: %w", err)
	}

	store, err := history.Open(cfg.Paths.LogDir)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	proc := pipeline.New(cfg, fetcher, converter, renamer, topologizer, logger)
	runner := batch.New(cfg, proc, logger,
		batch.WithLedger(store),
		batch.WithLogPath(logPath),
		batch.WithProgress(stderrIsTerminal()),
	)

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(runCtx, tablePath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := result.Stats
	fmt.Fprintf(out, "Processed %d samples: %d completed, %d failed, %d skipped (success rate %s)\n",
		stats.Total, stats.Completed, stats.Failed, stats.Skipped,
		report.SuccessRate(stats.Completed, stats.Total))
	fmt.Fprintf(out, "Log file: %s\n", logPath)
	if result.ReportPath != "" {
		fmt.Fprintf(out, "Report:   %s\n", result.ReportPath)
	}

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d samples failed; see %s", stats.Failed, stats.Total, logPath)
	}
	return nil
}

func missingTools(cfg *config.Config) []string {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	statuses = append(statuses, deps.CheckRenameScript(cfg.Tools.RenameScript))
	return deps.MissingRequired(statuses)
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
