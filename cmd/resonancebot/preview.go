package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/resonance-bot/internal/app"
	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

var errPreviewPublish = errors.New("preview never publishes")

type previewOptions struct {
	fetch bool
	at    string
}

func newPreviewCommand(root *rootOptions) *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the caption the next cycle would send, without publishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd.Context(), root, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.fetch, "fetch", false, "also download every image and report its size")
	cmd.Flags().StringVar(&opts.at, "at", "", "render the caption for this RFC 3339 instant instead of now")

	return cmd
}

func runPreview(ctx context.Context, root *rootOptions, opts *previewOptions, out io.Writer) error {
	at := time.Now()

	if opts.at != "" {
		parsed, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}

		at = parsed
	}

	cfg, err := loadConfig(root, false)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stderr)

	timeout, err := requestTimeout(cfg)
	if err != nil {
		return err
	}

	fetcher, err := newImageFetcher(cfg, timeout, nil, logger)
	if err != nil {
		return err
	}

	cycle, err := newCycle(cfg, fetcher, dryRunPublisher{}, nil, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cycle.Caption(ctx, at))

	if !opts.fetch {
		return nil
	}

	return reportImages(ctx, fetcher, cycle.ImagePaths(), out)
}

// reportImages downloads every path concurrently and prints one line per image.
// All paths are attempted even when some fail.
func reportImages(ctx context.Context, fetcher ports.ImageFetcher, paths []string, out io.Writer) error {
	fns := make([]func(context.Context) (int, error), len(paths))
	for i, path := range paths {
		fns[i] = func(ctx context.Context) (int, error) {
			data, err := fetcher.Fetch(ctx, path)
			return len(data), err
		}
	}

	results := app.ParallelPartial(ctx, fns...)

	fmt.Fprintln(out)

	failed := 0

	for i, r := range results {
		if r.Err != nil {
			failed++

			fmt.Fprintf(out, "%-10s error: %v\n", paths[i], r.Err)

			continue
		}

		fmt.Fprintf(out, "%-10s %d bytes\n", paths[i], r.Value)
	}

	if failed > 0 {
		return domain.NewFetchError("images", fmt.Sprintf("%d of %d failed", failed, len(paths)), nil)
	}

	return nil
}

// dryRunPublisher satisfies the cycle's publisher without a Bot API connection.
type dryRunPublisher struct{}

func (dryRunPublisher) SendMediaGroup(context.Context, int64, []domain.MediaItem) error {
	return errPreviewPublish
}
