package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/dimarray/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// Commands report their own failures; anything else is a usage or
		// setup error that has not been printed yet.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
