package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mdprep/internal/config"
	"mdprep/internal/fileutil"
	"mdprep/internal/itp"
	"mdprep/internal/logging"
	"mdprep/internal/pubchem"
	"mdprep/internal/services/acpype"
	"mdprep/internal/services/obabel"
	"mdprep/internal/services/resname"
	"mdprep/internal/worktable"
)

// Molecule base names inside every sample directory: molecule A is the first
// compound of the pair, molecule B the second.
const (
	BaseA = "MOA"
	BaseB = "MOB"
)

// Outcome records one sample's pipeline run.
type Outcome struct {
	SampleID     int64
	Success      bool
	ErrorMessage string
	Elapsed      time.Duration
}

// Pipeline executes the ordered step chain for one sample: fetch both
// structures, convert, minimize, rename residues, generate topologies,
// collect outputs, split atom types, deploy templates. The first failing
// step aborts the sample; later samples are unaffected.
type Pipeline struct {
	cfg         *config.Config
	fetcher     pubchem.Fetcher
	converter   obabel.Converter
	renamer     resname.Renamer
	topologizer acpype.Topologizer
	logger      *slog.Logger
}

// New constructs a pipeline from its collaborators.
func New(cfg *config.Config, fetcher pubchem.Fetcher, converter obabel.Converter, renamer resname.Renamer, topologizer acpype.Topologizer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		fetcher:     fetcher,
		converter:   converter,
		renamer:     renamer,
		topologizer: topologizer,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
}

type molecule struct {
	base string
	cid  int64
}

func moleculesOf(item worktable.WorkItem) [2]molecule {
	return [2]molecule{
		{base: BaseA, cid: item.CompoundA},
		{base: BaseB, cid: item.CompoundB},
	}
}

// Process runs every step for one work item and folds the result into an
// Outcome. Failures are captured, not returned: one sample's failure must
// never abort the batch.
func (p *Pipeline) Process(ctx context.Context, item worktable.WorkItem) Outcome {
	logger := p.logger.With(logging.Int64(logging.FieldSample, item.SampleID))
	logger.Info("processing sample",
		logging.Int64("cid_a", item.CompoundA),
		logging.Int64("cid_b", item.CompoundB))

	start := time.Now()
	err := p.run(ctx, item, logger)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("sample failed", logging.Error(err), logging.Duration("elapsed", elapsed))
		return Outcome{SampleID: item.SampleID, ErrorMessage: err.Error(), Elapsed: elapsed}
	}
	logger.Info("sample complete", logging.Duration("elapsed", elapsed))
	return Outcome{SampleID: item.SampleID, Success: true, Elapsed: elapsed}
}

func (p *Pipeline) run(ctx context.Context, item worktable.WorkItem, logger *slog.Logger) error {
	sampleDir := p.cfg.SampleDir(item.SampleID)
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("create sample directory: %w", err)
	}

	molecules := moleculesOf(item)

	for _, mol := range molecules {
		sdfPath := filepath.Join(sampleDir, mol.base+".sdf")
		logger.Info("fetching structure", logging.String("molecule", mol.base), logging.Int64("cid", mol.cid))
		if err := p.fetcher.DownloadSDF(ctx, mol.cid, sdfPath); err != nil {
			return fmt.Errorf("fetch structure for %s (cid %d): %w", mol.base, mol.cid, err)
		}
	}

	for _, mol := range molecules {
		sdfPath := filepath.Join(sampleDir, mol.base+".sdf")
		mol2Path := filepath.Join(sampleDir, mol.base+".mol2")
		if err := p.converter.Convert(ctx, sdfPath, mol2Path); err != nil {
			return fmt.Errorf("convert %s: %w", mol.base, err)
		}
		// The SDF is an intermediate, not a result.
		if err := os.Remove(sdfPath); err != nil {
			return fmt.Errorf("remove fetched %s: %w", filepath.Base(sdfPath), err)
		}
	}

	for _, mol := range molecules {
		mol2Path := filepath.Join(sampleDir, mol.base+".mol2")
		if err := p.converter.Minimize(ctx, mol2Path); err != nil {
			return fmt.Errorf("optimize %s: %w", mol.base, err)
		}
	}

	if err := p.renamer.Rewrite(ctx, sampleDir); err != nil {
		return fmt.Errorf("rename residues: %w", err)
	}

	for _, mol := range molecules {
		logger.Info("generating topology", logging.String("molecule", mol.base))
		if err := p.topologizer.Generate(ctx, sampleDir, mol.base+".mol2", mol.base); err != nil {
			return fmt.Errorf("topologize %s: %w", mol.base, err)
		}
	}

	for _, mol := range molecules {
		if err := p.organize(sampleDir, mol.base, logger); err != nil {
			return fmt.Errorf("organize %s: %w", mol.base, err)
		}
	}

	for _, mol := range molecules {
		if err := p.extractParams(sampleDir, mol.base, logger); err != nil {
			return fmt.Errorf("extract parameters for %s: %w", mol.base, err)
		}
	}

	if _, err := fileutil.CopyDirFiles(p.cfg.Paths.TemplateDir, sampleDir); err != nil {
		return fmt.Errorf("deploy templates: %w", err)
	}

	return nil
}

// organize moves the topology results out of the acpype output subdirectory
// into the sample directory and removes the subdirectory. A missing
// subdirectory is tolerated: the downstream files simply stay absent.
func (p *Pipeline) organize(sampleDir, base string, logger *slog.Logger) error {
	outputDir := filepath.Join(sampleDir, base+".acpype")
	if _, err := os.Stat(outputDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("topology output directory missing", logging.String("molecule", base))
			return nil
		}
		return err
	}

	for _, name := range []string{base + "_GMX.gro", base + "_GMX.itp"} {
		if err := fileutil.CopyInto(filepath.Join(outputDir, name), sampleDir); err != nil {
			return err
		}
	}
	return os.RemoveAll(outputDir)
}

// extractParams splits the [ atomtypes ] block of the molecule's topology
// into its _prm.itp sidecar. A topology without the block is logged and
// tolerated; a topology that was never produced is skipped silently.
func (p *Pipeline) extractParams(sampleDir, base string, logger *slog.Logger) error {
	itpPath := filepath.Join(sampleDir, base+"_GMX.itp")
	if _, err := os.Stat(itpPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	prmPath := filepath.Join(sampleDir, base+"_GMX_prm.itp")
	if err := itp.ExtractFile(itpPath, prmPath); err != nil {
		if errors.Is(err, itp.ErrSectionNotFound) {
			logger.Warn("no atomtypes section to extract", logging.String("molecule", base))
			return nil
		}
		return err
	}
	return nil
}
