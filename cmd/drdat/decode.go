package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drdat/internal/drdatfile"
	"github.com/samcharles93/drdat/internal/logger"
	"github.com/samcharles93/drdat/internal/manifest"
	"github.com/samcharles93/drdat/pkg/drdat"
)

func decodeCmd() *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "Decode a .drdat file to JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"in", "i"},
				Usage:    "input .drdat path",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"out", "o"},
				Usage:   "output .json path (default: stdout)",
			},
			&cli.BoolFlag{
				Name:  "strict-nan",
				Usage: "decode the NaN sentinel as NaN (exported as null) instead of its dequantized value",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			fs := afero.NewOsFs()
			in := cmd.String("input")

			opts := []drdat.Option{drdat.WithLogger(log)}
			strict := cmd.Bool("strict-nan")
			if cfg := configFrom(ctx); cfg.StrictNaN != nil && !cmd.IsSet("strict-nan") {
				strict = *cfg.StrictNaN
			}
			if strict {
				opts = append(opts, drdat.WithStrictNaN())
			}

			vars, err := drdatfile.ReadFile(fs, in, opts...)
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}
			js, err := manifest.MarshalVariables(vars)
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			out := cmd.String("output")
			if out == "" {
				_, err = fmt.Fprintln(cmd.Root().Writer, string(js))
				return err
			}
			if err := afero.WriteFile(fs, out, append(js, '\n'), 0o644); err != nil {
				return fmt.Errorf("decode: %w", err)
			}
			log.Info("wrote json", "path", out, "variables", len(vars))
			return nil
		},
	}
}
