package main

import (
	"context"
	"os"

	"github.com/desertthunder/dropzone/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
