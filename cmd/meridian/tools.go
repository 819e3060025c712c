package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobrunner/meridian/internal/app"
	"github.com/jobrunner/meridian/internal/config"
	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <code>...",
	Short: "Resolve CRS codes and print their definitions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			for _, code := range args {
				c, err := a.CRSService.Resolve(ctx, code)
				if err != nil {
					return err
				}
				describe(cmd.OutOrStdout(), c)
			}
			return nil
		})
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform --from <code> --to <code> <x> <y> [z]",
	Short: "Transform a coordinate between two CRSs",
	Long: `Transform a coordinate between two CRSs. Values are given in the axis
order and units of the source CRS and printed in those of the target CRS.
Without coordinate arguments, one coordinate per line is read from stdin.`,
	Args: cobra.RangeArgs(0, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		var coords [][]float64
		if len(args) > 0 {
			c, err := parseCoordinate(args)
			if err != nil {
				return err
			}
			coords = append(coords, c)
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			for i, line := range strings.Split(string(data), "\n") {
				fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
				if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
					continue
				}
				c, err := parseCoordinate(fields)
				if err != nil {
					return fmt.Errorf("line %d: %w", i+1, err)
				}
				coords = append(coords, c)
			}
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			in := make([]domain.Coordinate, len(coords))
			for i, c := range coords {
				in[i] = domain.Coordinate{X: c[0], Y: c[1]}
				if len(c) == 3 {
					in[i].Z = c[2]
				}
			}
			out, err := a.CRSService.TransformAll(ctx, from, to, in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, c := range out {
				if len(coords[i]) == 3 {
					fmt.Fprintf(w, "%s %s %s\n", formatValue(c.X), formatValue(c.Y), formatValue(c.Z))
				} else {
					fmt.Fprintf(w, "%s %s\n", formatValue(c.X), formatValue(c.Y))
				}
			}
			return nil
		})
	},
}

var autoCmd = &cobra.Command{
	Use:   "auto <id> <lon> <lat>",
	Short: "Synthesize a WMS auto projection around a reference point",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid auto id %q", args[0])
		}
		ref, err := parseCoordinate(args[1:])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			c, err := a.CRSService.SynthesizeAuto(ctx, id, ref[0], ref[1])
			if err != nil {
				return err
			}
			describe(cmd.OutOrStdout(), c)
			return nil
		})
	},
}

func init() {
	transformCmd.Flags().String("from", "EPSG:4326", "source CRS code")
	transformCmd.Flags().String("to", "", "target CRS code")
	_ = transformCmd.MarkFlagRequired("to")
}

// withApp runs fn against a fully wired application without serving HTTP.
// Logs go to stderr so that stdout only carries results.
func withApp(cmd *cobra.Command, fn func(context.Context, *app.App) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Definitions.Watch = false
	cfg.Metrics.Enabled = false

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, setupLogger(cfg.Logging, os.Stderr))
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Shutdown(context.Background()) }()

	if a.SyncService != nil {
		if _, err := a.DefinitionSync.Sync(ctx); err != nil {
			return err
		}
	}
	return fn(ctx, a)
}

func parseCoordinate(fields []string) ([]float64, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return nil, fmt.Errorf("want 2 or 3 values, got %d", len(fields))
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func describe(w io.Writer, c crs.CoordinateSystem) {
	fmt.Fprintf(w, "%s\n", c.Code())
	fmt.Fprintf(w, "  Name:  %s\n", c.Name())
	fmt.Fprintf(w, "  Kind:  %s\n", c.Kind())
	fmt.Fprintf(w, "  Datum: %s (%s)\n", c.Datum().Name, c.Datum().Ellipsoid.Name)
	if h := c.Datum().ToWGS84; h.HasValues() {
		fmt.Fprintf(w, "  To WGS 84: %g %g %g m, %g %g %g\", %g ppm\n", h.DX, h.DY, h.DZ, h.EX, h.EY, h.EZ, h.PPM)
	}
	for i, a := range c.Axes() {
		unit := ""
		if a.Unit != nil {
			unit = " [" + a.Unit.Name + "]"
		}
		fmt.Fprintf(w, "  Axis %d: %s (%s)%s\n", i+1, a.Name, a.Orientation, unit)
	}
	if p, ok := c.(*crs.Projected); ok {
		fmt.Fprintf(w, "  Base:  %s\n", p.Base().Code())
		fmt.Fprintf(w, "  Projection: %s\n", p.Projection().Method())
	}
}
