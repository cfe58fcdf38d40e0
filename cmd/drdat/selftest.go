package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drdat/internal/logger"
	"github.com/samcharles93/drdat/internal/selftest"
)

func selftestCmd() *cli.Command {
	return &cli.Command{
		Name:  "selftest",
		Usage: "Round-trip synthetic 1-D to 4-D variables and report the quantization error",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "seed", Usage: "random seed for the synthetic data", Value: 1},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"out", "o"},
				Usage:   "also write the encoded test blob to this path",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			rep, err := selftest.Run(ctx, selftest.Options{Seed: uint64(cmd.Int64("seed"))})
			if err != nil {
				return fmt.Errorf("selftest: %w", err)
			}
			if out := cmd.String("output"); out != "" {
				if err := afero.WriteFile(afero.NewOsFs(), out, rep.Blob, 0o644); err != nil {
					return fmt.Errorf("selftest: %w", err)
				}
				log.Info("wrote test blob", "path", out, "bytes", len(rep.Blob))
			}

			tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "VARIABLE\tIN SHAPE\tOUT SHAPE\tIN\tOUT\tMAX ERROR\tBOUND\tOK")
			failed := 0
			for _, r := range rep.Results {
				if !r.OK() {
					failed++
				}
				_, _ = fmt.Fprintf(tw, "%s\t%v\t%v\t%.6g\t%.6g\t%.3g\t%.3g\t%t\n",
					r.Name, r.InShape, r.OutShape, r.In, r.Out, r.MaxError, r.Bound, r.OK())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("selftest: %d of %d variables failed", failed, len(rep.Results)), 1)
			}
			return nil
		},
	}
}
