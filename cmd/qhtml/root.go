package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/config"
	"github.com/qemacs/qemacs-sub000/pkg/document"
	"github.com/qemacs/qemacs-sub000/pkg/observability"
	"github.com/qemacs/qemacs-sub000/pkg/render"
	"github.com/qemacs/qemacs-sub000/pkg/screen/raster"
)

// app is the state shared by the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger

	// Overrides of the configuration.
	width, height int
	media         string
	docbook       bool
	sheetFile     string
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "qhtml",
		Short:         "Render HTML and DocBook documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.applyFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			observability.InitializeLogger(cfg.Logging)
			a.log = observability.GetLogger()
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./qhtml.yaml)")
	flags.IntVar(&a.width, "width", 0, "page width in pixels")
	flags.IntVar(&a.height, "height", 0, "page height in pixels")
	flags.StringVar(&a.media, "media", "", "media type: screen, tty or print")
	flags.BoolVar(&a.docbook, "docbook", false, "parse the input as DocBook XML")
	flags.StringVar(&a.sheetFile, "sheet", "", "extra style sheet applied after the defaults")

	root.AddCommand(newRenderCmd(a), newDumpCmd(a), newBatchCmd(a))
	return root, a
}

// applyFlags copies the flags given on the command line over cfg.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Render.Width = a.width
	}
	if flags.Changed("height") {
		cfg.Render.Height = a.height
	}
	if flags.Changed("media") {
		cfg.Render.Media = a.media
	}
	if flags.Changed("docbook") {
		cfg.Parser.DocBook = a.docbook
	}
}

func execute(ctx context.Context, args []string) error {
	root, _ := newRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		if logger := observability.GetLogger(); logger.Core().Enabled(zap.ErrorLevel) {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	return err
}

// options builds the document options for one input file.
func (a *app) options(ctx context.Context, filename string) (document.Options, error) {
	opts, err := document.OptionsFromConfig(a.cfg, a.log)
	if err != nil {
		return opts, err
	}
	opts.Filename = filename
	opts.Abort = func() bool { return ctx.Err() != nil }
	if a.sheetFile != "" {
		b, err := os.ReadFile(a.sheetFile)
		if err != nil {
			return opts, fmt.Errorf("read style sheet: %w", err)
		}
		opts.Sheet = string(b)
	}
	return opts, nil
}

// open creates a document for the file at path, drawing on a raster screen
// of the configured size.
func (a *app) open(ctx context.Context, path string) (*document.Document, *raster.Screen, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	opts, err := a.options(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	scr := raster.New(a.cfg.Render.Width, a.cfg.Render.Height, a.log, raster.Options{DPI: opts.DPI, Media: opts.Media})
	return document.New(buffer.NewMem(data, opts.Charset), scr, a.log, opts), scr, nil
}

// renderFile renders the document at in into the PNG file out.
func (a *app) renderFile(ctx context.Context, in, out string) error {
	start := time.Now()
	d, scr, err := a.open(ctx, in)
	if err != nil {
		return err
	}
	defer d.Close()
	w, h := scr.Size()
	if err := d.Display(image.Rect(0, 0, w, h), render.Selection{}); err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if err := scr.SavePNG(out); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	a.log.Info("rendered",
		zap.String("input", in),
		zap.String("output", out),
		zap.Int("diagnostics", d.Errors().Len()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
