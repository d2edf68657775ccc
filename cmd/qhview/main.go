// Command qhview shows a document in a window. Clicking places the caret,
// the arrow keys, Home and End move it, and Ctrl+R reloads the file.
package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/config"
	"github.com/qemacs/qemacs-sub000/pkg/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:          "qhview <file>",
		Short:        "View an HTML or DocBook document",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			observability.InitializeLogger(cfg.Logging)
			defer observability.Sync()
			v, err := newViewer(args[0], cfg, observability.GetLogger())
			if err != nil {
				return err
			}
			defer v.close()
			show(v, cfg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./qhtml.yaml)")
	return cmd
}

func show(v *viewer, cfg *config.Config) {
	a := app.New()
	w := a.NewWindow("qhview - " + v.path)
	w.Resize(fyne.NewSize(float32(cfg.Render.Width), float32(cfg.Render.Height+40)))

	status := widget.NewLabel("")
	view := newDocView(v, status)
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		if err := v.reload(); err != nil {
			status.SetText("Reload error: " + err.Error())
			return
		}
		view.redraw()
	})

	w.SetContent(container.NewBorder(nil, status, nil, nil, container.NewScroll(view)))
	view.redraw()
	w.Canvas().Focus(view)
	w.ShowAndRun()
}

// docView displays the rendered document and turns taps and keys into
// caret moves.
type docView struct {
	widget.BaseWidget
	v      *viewer
	img    *canvas.Image
	status *widget.Label
}

var (
	_ fyne.Tappable  = (*docView)(nil)
	_ fyne.Focusable = (*docView)(nil)
)

func newDocView(v *viewer, status *widget.Label) *docView {
	img := canvas.NewImageFromImage(v.scr.Image())
	img.FillMode = canvas.ImageFillOriginal
	img.ScaleMode = canvas.ImageScalePixels
	d := &docView{v: v, img: img, status: status}
	d.ExtendBaseWidget(d)
	return d
}

func (d *docView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(d.img)
}

func (d *docView) redraw() {
	frame, err := d.v.frame()
	if err != nil {
		d.v.log.Warn("display failed", zap.Error(err))
		d.status.SetText("Error: " + err.Error())
		return
	}
	d.img.Image = frame
	d.img.Refresh()
	d.status.SetText(d.v.status())
}

// scale converts widget coordinates to image pixels.
func (d *docView) scale() float32 {
	if c := fyne.CurrentApp().Driver().CanvasForObject(d); c != nil {
		return c.Scale()
	}
	return 1
}

func (d *docView) Tapped(ev *fyne.PointEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(d); c != nil {
		c.Focus(d)
	}
	s := d.scale()
	if d.v.click(int(ev.Position.X*s), int(ev.Position.Y*s)) {
		d.redraw()
	}
}

func (d *docView) FocusGained()   {}
func (d *docView) FocusLost()     {}
func (d *docView) TypedRune(rune) {}

var keyMoves = map[fyne.KeyName]move{
	fyne.KeyLeft:  moveLeft,
	fyne.KeyRight: moveRight,
	fyne.KeyUp:    moveUp,
	fyne.KeyDown:  moveDown,
	fyne.KeyHome:  moveHome,
	fyne.KeyEnd:   moveEnd,
}

func (d *docView) TypedKey(ev *fyne.KeyEvent) {
	m, ok := keyMoves[ev.Name]
	if !ok {
		return
	}
	if d.v.key(m) {
		d.redraw()
	}
}
