package document

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/charset"
	"github.com/qemacs/qemacs-sub000/pkg/config"
	"github.com/qemacs/qemacs-sub000/pkg/html"
	"github.com/qemacs/qemacs-sub000/pkg/render"
)

// OptionsFromConfig translates the tool configuration into document
// options. The ligature file is loaded here; failing to load it only
// disables ligatures.
func OptionsFromConfig(cfg *config.Config, log *zap.Logger) (Options, error) {
	media, err := cfg.Render.MediaMask()
	if err != nil {
		return Options{}, err
	}
	bg, err := cfg.Render.BackgroundColor()
	if err != nil {
		return Options{}, err
	}
	sel, err := cfg.Render.Selection()
	if err != nil {
		return Options{}, err
	}
	dec, err := charset.New(cfg.Parser.Charset)
	if err != nil {
		return Options{}, fmt.Errorf("parser.charset: %w", err)
	}

	opts := Options{
		Charset:   dec,
		Media:     media,
		DPI:       cfg.Render.DPI,
		PxScale:   cfg.Render.PxScale,
		FontSize:  cfg.Render.FontSize,
		Width:     cfg.Render.Width,
		Height:    cfg.Render.Height,
		Ligatures: LoadLigatures(cfg.Shaping.LigatureFile, log),
		Render:    render.Options{Background: bg, SelectionColor: sel},
	}
	p := cfg.Parser
	if p.DocBook {
		opts.Mode = ModeDocBook
	} else if !p.HTMLQuirks || !p.Lenient || !p.IgnoreCase {
		opts.Parser = &html.Options{HTMLQuirks: p.HTMLQuirks, Lenient: p.Lenient, IgnoreCase: p.IgnoreCase}
	}
	return opts, nil
}
