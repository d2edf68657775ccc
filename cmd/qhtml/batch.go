package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		outDir string
		jobs   int
	)
	cmd := &cobra.Command{
		Use:   "batch <input>... -d outdir",
		Short: "Render many documents concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			seen := make(map[string]string, len(args))
			for _, in := range args {
				out := filepath.Join(outDir, pngName(filepath.Base(in)))
				if prev, ok := seen[out]; ok {
					return fmt.Errorf("%s and %s both render to %s", prev, in, out)
				}
				seen[out] = in
			}

			// Each goroutine owns its document, screen and buffer.
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(jobs)
			for out, in := range seen {
				g.Go(func() error {
					return a.renderFile(ctx, in, out)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			a.log.Info("batch done", zap.Int("documents", len(seen)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "dir", "d", ".", "output directory")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "documents rendered at once")
	return cmd
}
