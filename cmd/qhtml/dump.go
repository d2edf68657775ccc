package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDumpCmd(a *app) *cobra.Command {
	var showErrors bool
	cmd := &cobra.Command{
		Use:   "dump <input>",
		Short: "Print the laid out box tree of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.Update(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprint(cmd.OutOrStdout(), d.Dump())
			if showErrors {
				for _, line := range d.Errors().Lines() {
					fmt.Fprintln(cmd.ErrOrStderr(), line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showErrors, "errors", "e", false, "print the parse diagnostics")
	return cmd
}
