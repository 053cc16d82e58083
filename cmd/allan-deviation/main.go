package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/alejandrokeller/allan-plot/internal/app"
	"github.com/alejandrokeller/allan-plot/internal/config"
	apperrors "github.com/alejandrokeller/allan-plot/internal/errors"
	"github.com/alejandrokeller/allan-plot/pkg/contracts"
)

// Exit codes.
const (
	exitOK      = 0
	exitRunFail = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cl, err := config.ParseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if cl.ShowVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	application, err := app.NewApplication(cl, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if apperrors.IsType(err, apperrors.ErrTypeStorage) {
			return exitRunFail
		}
		return exitUsage
	}

	ctx := context.Background()
	_, runErr := application.Run(ctx)
	if err := application.Stop(ctx); err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return exitRunFail
	}
	return exitOK
}
