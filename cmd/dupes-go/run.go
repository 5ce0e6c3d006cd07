package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dupes-go/internal/compare"
	"dupes-go/internal/config"
	"dupes-go/internal/dedup"
	"dupes-go/internal/progress"
	"dupes-go/internal/report"
	"dupes-go/internal/tree"
)

// run scans primary, and reference when it is not empty, then prints the
// report and optionally removes duplicates.
func run(cmd *cobra.Command, primaryPath, referencePath string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	treeOpts := tree.DefaultOptions().
		WithFollowSymlinks(cfg.FollowSymlinks).
		WithExclude(cfg.Exclude).
		WithLogger(logger)

	primary, err := scanRoot(primaryPath, treeOpts, logger)
	if err != nil {
		return err
	}

	var reference *tree.Tree
	if referencePath != "" {
		reference, err = scanRoot(referencePath, treeOpts, logger)
		if err != nil {
			return err
		}

		switch compare.Relate(primary.RootPath(), reference.RootPath()) {
		case compare.Identical, compare.PrimaryInsideReference:
			return fmt.Errorf("cannot compare %s to %s: every duplicate would lie inside the reference",
				primary.RootPath(), reference.RootPath())
		case compare.ReferenceInsidePrimary:
			logger.Warn().
				Str("path", primary.RootPath()).
				Str("reference", reference.RootPath()).
				Msg("reference lies inside path; its files are never reported")
		}
	}

	dedupOpts := dedup.DefaultOptions().
		WithMinSize(cfg.MinSize).
		WithLogger(logger)
	if cfg.Workers > 0 {
		dedupOpts = dedupOpts.WithWorkers(cfg.Workers)
	}
	if flagProgress {
		dedupOpts = dedupOpts.WithProgress(progress.New(os.Stderr, "Hashing"))
	}

	var res *dedup.Result
	if reference != nil {
		res, err = compare.DuplicatesAgainst(ctx, primary, reference, dedupOpts)
	} else {
		res, err = dedup.Duplicates(ctx, primary, dedupOpts)
	}
	if err != nil {
		return fmt.Errorf("failed to find duplicates: %w", err)
	}

	scan := &report.Scan{
		Primary:   primary,
		Reference: reference,
		Clusters:  res.Clusters,
		Errors:    res.Errors,
	}

	if err := writeReport(cmd, cfg, scan); err != nil {
		return err
	}

	if !flagRemove {
		return nil
	}
	return removeDuplicates(cmd, scan.RemovalTargets(), logger)
}

func scanRoot(path string, opts tree.Options, logger zerolog.Logger) (*tree.Tree, error) {
	t, err := tree.New(path, opts)
	if err != nil {
		return nil, err
	}
	if t.Root().Err() == tree.AccessDenied {
		return nil, fmt.Errorf("cannot read %s: %s", t.RootPath(), t.Root().Err())
	}
	logger.Debug().
		Str("path", t.RootPath()).
		Int("files", t.FileCount()).
		Int("dirs", t.DirectoryCount()).
		Str("size", humanize.IBytes(uint64(t.TotalSize()))).
		Msg("scanned")

	return t, nil
}

func writeReport(cmd *cobra.Command, cfg *config.Config, scan *report.Scan) error {
	out := cmd.OutOrStdout()

	switch cfg.Output {
	case config.OutputJSON:
		doc, err := report.NewDocument(scan)
		if err != nil {
			return err
		}
		if flagOutput == "" {
			return report.WriteJSON(out, doc)
		}
		if err := report.Save(doc, flagOutput); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(out, "✓ Report written to %s\n", flagOutput)
		fmt.Fprintf(out, "  Groups: %d\n", len(doc.Clusters))
		fmt.Fprintf(out, "  Fingerprint: %s\n", doc.Fingerprint)
		return nil

	case config.OutputDetailed:
		if err := report.WriteSummary(out, scan); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return report.WriteDetailed(out, scan)

	default:
		if err := report.WriteSummary(out, scan); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return report.WriteList(out, scan)
	}
}
