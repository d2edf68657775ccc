package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render <input> [-o output.png]",
		Short: "Render a document to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output
			if out == "" {
				out = pngName(args[0])
			}
			return a.renderFile(cmd.Context(), args[0], out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default is the input name with a .png extension)")
	return cmd
}

// pngName replaces the extension of path by .png.
func pngName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}
