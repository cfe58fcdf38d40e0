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

func encodeCmd() *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "Encode the variables described by a YAML manifest into a .drdat file",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "manifest",
				Aliases:  []string{"m"},
				Usage:    "YAML manifest listing variables and their JSON data files",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"out", "o"},
				Usage:    "output .drdat path",
				Required: true,
			},
		}, quantFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			fs := afero.NewOsFs()
			out := cmd.String("output")

			m, err := manifest.Load(fs, cmd.String("manifest"))
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			defaults := applyQuantFlags(cmd, configFrom(ctx).Defaults())
			vars, err := m.Read(fs, defaults)
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if err := drdatfile.WriteFile(fs, out, vars, drdat.WithLogger(log)); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			log.Info("wrote file", "path", out, "variables", len(vars))
			return nil
		},
	}
}
