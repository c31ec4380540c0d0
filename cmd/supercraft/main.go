package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/supercraft/internal"
	"github.com/valter-silva-au/supercraft/internal/cli"
	"github.com/valter-silva-au/supercraft/internal/projectpath"
)

// Set with -ldflags "-X main.version=..." at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	root := app.ResolveRoot(os.Args[1:])

	a, err := app.NewApp(root, projectpath.DefaultGlobalDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing supercraft: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute()
	_ = a.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
