// =============================================================================
// Candidate Surveys - Batch Generator
// =============================================================================
//
// This module runs one batch: every response record becomes one document,
// and optionally one row of the summary table.
//
// GENERATION PIPELINE:
//   1. Check the configuration against the response header
//   2. For each record, in file order:
//      a. Assemble the document blocks and metadata
//      b. Build the output path and create its directories
//      c. Write the document
//      d. Add the record to the summary table
//   3. Write the summary table
//
// Records are processed one at a time. The first failure stops the batch;
// documents already written are left in place.
//
// =============================================================================

package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/candidate-surveys/internal/config"
	"github.com/ginjaninja78/candidate-surveys/internal/document"
	"github.com/ginjaninja78/candidate-surveys/internal/htmlwriter"
	"github.com/ginjaninja78/candidate-surveys/internal/logogrid"
	"github.com/ginjaninja78/candidate-surveys/internal/summary"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
	"github.com/ginjaninja78/candidate-surveys/internal/validation"
	"github.com/ginjaninja78/candidate-surveys/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one batch.
type Result struct {
	// RunID identifies the batch in log output.
	RunID string

	// Documents lists the written document paths in record order.
	Documents []string

	// SummaryPath is the written summary table, or "" if none was written.
	SummaryPath string

	// Warnings holds the non-fatal configuration issues found up front.
	Warnings []validation.Issue

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the batch.
type ProcessingStats struct {
	// RecordsProcessed is the number of records turned into documents.
	RecordsProcessed int

	// PathsRenamed is the number of paths changed to avoid a collision.
	PathsRenamed int

	// ProcessingTime is the time taken by the batch.
	ProcessingTime time.Duration
}

// =============================================================================
// GENERATOR STRUCTURE
// =============================================================================

// DocumentWriter renders a document to a file whose parent directory
// exists.
type DocumentWriter interface {
	Write(doc *document.Document, path string) error
}

// Options contains the per-batch settings that do not come from the
// configuration file.
type Options struct {
	// OutputDir is the root of the document paths.
	OutputDir string

	// SummaryPath is where the summary table is written when the
	// configuration enables it.
	SummaryPath string

	// DedupePaths appends -2, -3, ... to paths already used in the batch.
	// Default: false (later documents overwrite earlier ones)
	DedupePaths bool
}

// Generator runs batches for one resolved configuration.
type Generator struct {
	cfg       *config.Resolved
	assembler *document.Assembler
	writer    DocumentWriter
	summary   *summary.Builder
	logger    *zap.Logger
	options   Options
}

// New creates a Generator.
//
// PARAMETERS:
//   - cfg: The resolved configuration.
//   - grid: The logo grid, laid out once for the batch.
//   - writer: The document writer.
//   - logger: The logger; nil disables logging.
//   - options: Batch settings.
//
// RETURNS:
//   - The generator.
//   - A *types.ConfigError if the summary table configuration is invalid.
func New(cfg *config.Resolved, grid logogrid.Layout, writer DocumentWriter, logger *zap.Logger, options Options) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Generator{
		cfg:       cfg,
		assembler: document.NewAssembler(cfg, grid),
		writer:    writer,
		logger:    logger,
		options:   options,
	}

	if cfg.HTMLTable != nil {
		builder, err := summary.NewBuilder(cfg.HTMLTable)
		if err != nil {
			return nil, err
		}
		g.summary = builder
	}

	return g, nil
}

// =============================================================================
// BATCH
// =============================================================================

// Run generates one document per record of set.
//
// RETURNS:
//   - The batch result. On error it describes the documents written before
//     the failure.
//   - The first error: a *types.MissingFieldError, a *types.WriteError, or
//     the context error if ctx is cancelled between records.
func (g *Generator) Run(ctx context.Context, set *types.ResponseSet) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	log := g.logger.With(zap.String("run_id", result.RunID))
	defer func() {
		result.Stats.ProcessingTime = time.Since(start)
	}()

	log.Info("Starting batch",
		zap.String("responses", set.Source),
		zap.Int("records", len(set.Records)),
		zap.String("output", g.options.OutputDir))

	check := validation.Validate(g.cfg, set.Header)
	result.Warnings = check.Warnings()
	for _, issue := range result.Warnings {
		log.Warn("Configuration warning",
			zap.String("key", issue.Key),
			zap.String("field", issue.Field),
			zap.String("message", issue.Message))
	}
	if err := check.Err(); err != nil {
		return result, err
	}

	var acc *summary.Accumulator
	if g.summary != nil {
		acc = g.summary.NewAccumulator()
	}

	var paths *utils.PathSet
	if g.options.DedupePaths {
		paths = utils.NewPathSet()
	}

	for i, rec := range set.Records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row := i + 1
		path, err := g.generate(rec, paths, result)
		if err != nil {
			log.Error("Failed to generate document", zap.Int("row", row), zap.Error(err))
			return result, withRow(err, row)
		}

		if acc != nil {
			if err := acc.Add(rec); err != nil {
				return result, withRow(err, row)
			}
		}

		result.Documents = append(result.Documents, path)
		result.Stats.RecordsProcessed++
		log.Debug("Created document", zap.Int("row", row), zap.String("path", path))
	}

	if acc != nil {
		table := acc.Finalize()
		if err := htmlwriter.Write(table, g.options.SummaryPath); err != nil {
			return result, err
		}
		result.SummaryPath = g.options.SummaryPath
		log.Info("Wrote summary table", zap.String("path", g.options.SummaryPath), zap.Int("rows", len(table.Rows)))
	}

	log.Info("Batch complete",
		zap.Int("documents", len(result.Documents)),
		zap.Int("paths_renamed", result.Stats.PathsRenamed))
	return result, nil
}

// generate writes the document of one record and returns its path.
func (g *Generator) generate(rec types.Record, paths *utils.PathSet, result *Result) (string, error) {
	doc, err := g.assembler.Assemble(rec)
	if err != nil {
		return "", err
	}
	g.logger.Debug("Assembled document",
		zap.Stringer("candidate", doc.Candidate),
		zap.Int("blocks", len(doc.Blocks)))

	path, err := document.BuildPath(doc.Candidate, g.cfg, g.options.OutputDir)
	if err != nil {
		return "", err
	}
	if paths != nil {
		claimed := paths.Claim(path)
		if claimed != path {
			result.Stats.PathsRenamed++
			g.logger.Warn("Output path already used", zap.String("path", path), zap.String("renamed", claimed))
		}
		path = claimed
	}

	if err := utils.EnsureParentDir(path); err != nil {
		return "", &types.WriteError{Path: path, Err: err}
	}
	if utils.FileExists(path) {
		g.logger.Info("Replacing existing document", zap.String("path", path), zap.Stringer("candidate", doc.Candidate))
	}
	if err := g.writer.Write(doc, path); err != nil {
		var writeErr *types.WriteError
		if errors.As(err, &writeErr) {
			return "", err
		}
		return "", &types.WriteError{Path: path, Err: err}
	}

	return path, nil
}

// withRow records the data row on a missing field error.
func withRow(err error, row int) error {
	var missing *types.MissingFieldError
	if errors.As(err, &missing) && missing.Row == 0 {
		missing.Row = row
	}
	return err
}

// String summarizes the result for display.
func (r *Result) String() string {
	s := fmt.Sprintf("Run %s: %d document(s) written", r.RunID, len(r.Documents))
	if r.SummaryPath != "" {
		s += fmt.Sprintf(", summary at %s", r.SummaryPath)
	}
	return s
}
