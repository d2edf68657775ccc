// Command qhtml renders HTML and DocBook documents to PNG images and dumps
// their box trees.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/qemacs/qemacs-sub000/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:])
	stop()
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}
