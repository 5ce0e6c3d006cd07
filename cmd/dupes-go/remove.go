package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dupes-go/internal/tree"
)

var errRemovalFailed = errors.New("some duplicates could not be removed")

func removeDuplicates(cmd *cobra.Command, targets []*tree.Node, logger zerolog.Logger) error {
	out := cmd.OutOrStdout()
	if len(targets) == 0 {
		fmt.Fprintln(out, "Nothing to remove.")
		return nil
	}

	var size int64
	for _, n := range targets {
		size += n.Size()
	}

	if !flagForce {
		prompt := fmt.Sprintf("Remove %d files (%s)?", len(targets), humanize.IBytes(uint64(size)))
		if !confirm(cmd.InOrStdin(), out, prompt) {
			fmt.Fprintln(out, "Nothing removed.")
			return nil
		}
	}

	removed, failed := removeFiles(targets, logger)
	fmt.Fprintf(out, "Removed %d files.\n", removed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errRemovalFailed, failed, len(targets))
	}
	return nil
}

// confirm asks until the answer is y or n. End of input counts as no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s [y/n] ", prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

// removeFiles deletes every target, continuing past failures.
func removeFiles(targets []*tree.Node, logger zerolog.Logger) (removed, failed int) {
	for _, n := range targets {
		if err := os.Remove(n.Path()); err != nil {
			logger.Error().Err(err).Str("path", n.Path()).Msg("failed to remove duplicate")
			failed++
			continue
		}
		logger.Debug().Str("path", n.Path()).Msg("removed")
		removed++
	}
	return removed, failed
}
