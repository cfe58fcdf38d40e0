package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "drdat",
		Usage:     "Encode, decode and inspect quantized .drdat array containers",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     append(configFlags(), loggingFlags()...),
		Before:    setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			encodeCmd(),
			decodeCmd(),
			inspectCmd(),
			selftestCmd(),
			versionCmd(),
		},
	}
}
