package main

import (
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	_ "go.uber.org/automaxprocs"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

const usage = "xrbt [flags] <keys-file>"

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		// Exit coders have already terminated the process.
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "xrbt",
		Usage:     "timestamped red-black ordered set driven by line directives",
		UsageText: usage,
		Version:   versioninfo.Short(),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     appFlags,
		Action:    runAction,
	}
}
