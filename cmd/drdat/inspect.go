package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/drdat/internal/drdatfile"
	"github.com/samcharles93/drdat/pkg/drdat"
)

type inspectRecord struct {
	Index      int     `json:"index"`
	Bits       int     `json:"bits"`
	Shape      []int   `json:"shape"`
	Samples    int     `json:"samples"`
	Scale      float64 `json:"scale"`
	Offset     float64 `json:"offset"`
	ScaleCode  int32   `json:"scale_code"`
	OffsetCode int32   `json:"offset_code"`
	DataOffset int     `json:"data_offset"`
	DataSize   int     `json:"data_size"`
	Min        float64 `json:"min_value"`
	Max        float64 `json:"max_value"`
}

type inspectReport struct {
	Path      string          `json:"path"`
	Size      int             `json:"size"`
	Variables []inspectRecord `json:"variables"`
}

func inspectCmd() *cli.Command {
	var (
		inPath string
		asJSON bool
	)
	return &cli.Command{
		Name:  "inspect",
		Usage: "Show the record layout of a .drdat file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"in", "i"},
				Usage:       "input .drdat path",
				Required:    true,
				Destination: &inPath,
			},
			&cli.BoolFlag{Name: "json", Usage: "print the layout as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := drdatfile.Open(inPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			rep := buildInspectReport(inPath, len(f.Data), f.Header())
			w := cmd.Root().Writer
			if asJSON {
				js, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(js))
				return err
			}
			return printInspectReport(w, rep)
		},
	}
}

func buildInspectReport(path string, size int, h drdat.Header) inspectReport {
	rep := inspectReport{Path: path, Size: size, Variables: make([]inspectRecord, len(h.Records))}
	for i, r := range h.Records {
		lo, hi := r.Params.Dequantize(0), r.Params.Dequantize(r.Params.MaxValue())
		if lo > hi {
			lo, hi = hi, lo
		}
		rep.Variables[i] = inspectRecord{
			Index:      i,
			Bits:       r.Params.BitsPerSample,
			Shape:      r.Shape,
			Samples:    r.Samples(),
			Scale:      r.Params.Scale,
			Offset:     r.Params.Offset,
			ScaleCode:  r.ScaleCode,
			OffsetCode: r.OffsetCode,
			DataOffset: r.DataOffset,
			DataSize:   r.DataSize,
			Min:        lo,
			Max:        hi,
		}
	}
	return rep
}

func printInspectReport(w io.Writer, rep inspectReport) error {
	if _, err := fmt.Fprintf(w, "%s: %s, %d variables\n\n", rep.Path, humanize.IBytes(uint64(rep.Size)), len(rep.Variables)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tBITS\tSHAPE\tSAMPLES\tSCALE\tOFFSET\tRANGE\tDATA")
	for _, v := range rep.Variables {
		dims := make([]string, len(v.Shape))
		for i, d := range v.Shape {
			dims[i] = fmt.Sprint(d)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%g\t%g\t[%g, %g]\t%s @ %d\n",
			v.Index, v.Bits, strings.Join(dims, "x"), humanize.Comma(int64(v.Samples)),
			v.Scale, v.Offset, v.Min, v.Max, humanize.IBytes(uint64(v.DataSize)), v.DataOffset)
	}
	return tw.Flush()
}
