package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-dtw/internal/config"
	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/logging"
	"github.com/joeblew999/plat-dtw/internal/server"
	"github.com/joeblew999/plat-dtw/internal/tiler"
)

// Options defines all CLI flags and env vars for the dtw server.
// Flags: --host, --port, --config, --data-dir, --web-dir, --store, --log-level, --log-format
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_CONFIG, ...
type Options struct {
	Host      string `doc:"Host to bind to" default:"0.0.0.0"`
	Port      int    `doc:"Port to listen on" short:"p" default:"8087"`
	Config    string `doc:"Study area configuration file (YAML or JSON)" short:"c" default:"configs/study.yaml"`
	DataDir   string `doc:"Directory for the DuckDB raster store" default:".data"`
	WebDir    string `doc:"Path to web/ directory" default:"web"`
	Store     string `doc:"Raster store backend" enum:"memory,duckdb" default:"memory"`
	LogLevel  string `doc:"Log level" enum:"debug,info,warn,error" default:"info"`
	LogFormat string `doc:"Log format" enum:"text,json" default:"text"`
}

func serverConfig(opts *Options) server.Config {
	return server.Config{
		Host:       opts.Host,
		Port:       strconv.Itoa(opts.Port),
		ConfigPath: opts.Config,
		DataDir:    opts.DataDir,
		WebDir:     opts.WebDir,
		Store:      opts.Store,
	}
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var httpServer *http.Server
		var srv *server.Server

		hooks.OnStart(func() {
			logging.Setup(opts.LogLevel, opts.LogFormat)

			var err error
			srv, err = server.New(context.Background(), serverConfig(opts))
			if err != nil {
				fail("Startup failed", err)
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-dtw API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Study:   %s\n", opts.Config)
			fmt.Printf("  Store:   %s\n", opts.Store)
			fmt.Println()
			fmt.Printf("  Viewer:  %s/viewer\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics: %s/metrics\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{Addr: addr, Handler: srv}
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fail("Server error", err)
			}
		})

		hooks.OnStop(func() {
			if httpServer == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				slog.Error("shutdown", "error", err)
			}
			if srv != nil {
				srv.Close()
			}
		})
	})

	cli.Root().Use = "dtw"
	cli.Root().Short = "Depth-to-groundwater map service"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			spec := server.OpenAPI(serverConfig(opts))

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fail("Error marshaling spec", err)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// bounds subcommand: print the computed map extent of the study area
	boundsCmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the map extent computed from the study area corners",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			logging.Setup(opts.LogLevel, opts.LogFormat)
			area, err := config.Load(opts.Config)
			if err != nil {
				fail("Error loading study area", err)
			}
			compute := geo.ComputeBounds
			if area.StrictBounds {
				compute = geo.ComputeBoundsStrict
			}
			ext, err := compute(geo.NewReprojector(), area.Corners(), area.RasterProjection, area.LatLongProjection)
			if err != nil {
				fail("Error computing bounds", err)
			}
			out, _ := json.MarshalIndent(ext, "", "  ")
			fmt.Println(string(out))
		}),
	}
	cli.Root().AddCommand(boundsCmd)

	// reproject subcommand: reproject a single point
	reprojectCmd := &cobra.Command{
		Use:   "reproject X Y",
		Short: "Reproject a point between reference systems",
		Args:  cobra.ExactArgs(2),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				fail("Invalid X", err)
			}
			y, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				fail("Invalid Y", err)
			}
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			p, err := geo.Reproject(orb.Point{x, y}, from, to)
			if err != nil {
				fail("Error reprojecting", err)
			}
			fmt.Printf("%.6f %.6f\n", p[0], p[1])
		}),
	}
	reprojectCmd.Flags().String("from", "EPSG:4326", "Source reference system")
	reprojectCmd.Flags().String("to", "EPSG:3857", "Target reference system")
	cli.Root().AddCommand(reprojectCmd)

	// ramp subcommand: print the color table
	rampCmd := &cobra.Command{
		Use:   "ramp",
		Short: "Print the depth color ramp",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			classes, _ := cmd.Flags().GetInt("classes")
			low, high := geo.DefaultLowColor, geo.DefaultHighColor
			if area, err := config.Load(opts.Config); err == nil {
				low, high = area.Colors()
				if classes <= 0 {
					classes = area.Classes
				}
			}
			if classes <= 0 {
				classes = geo.DefaultClassCount
			}
			for i, c := range geo.Ramp(classes, low, high) {
				fmt.Printf("%3d %s\n", i, c.Hex())
			}
		}),
	}
	rampCmd.Flags().IntP("classes", "n", 0, "Number of classes (default: study area or 30)")
	cli.Root().AddCommand(rampCmd)

	// tiles subcommand: export the depth overlay as PMTiles
	tilesCmd := &cobra.Command{
		Use:   "tiles",
		Short: "Export classified depth cells as a PMTiles vector tile archive",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			logging.Setup(opts.LogLevel, opts.LogFormat)
			ctx := context.Background()

			srv, err := server.New(ctx, serverConfig(opts))
			if err != nil {
				fail("Startup failed", err)
			}
			defer srv.Close()

			out, _ := cmd.Flags().GetString("output")
			if out == "" {
				out = filepath.Join(srv.TilesDir(), "depth.pmtiles")
			}
			minZoom, _ := cmd.Flags().GetInt("min-zoom")
			maxZoom, _ := cmd.Flags().GetInt("max-zoom")

			if err := srv.ExportTiles(ctx, out, tiler.Options{MinZoom: minZoom, MaxZoom: maxZoom}); err != nil {
				fail("Error generating tiles", err)
			}
			fmt.Printf("Depth tiles written to %s\n", out)
		}),
	}
	tilesCmd.Flags().StringP("output", "o", "", "Output file (default: <data-dir>/tiles/depth.pmtiles)")
	tilesCmd.Flags().Int("min-zoom", 8, "Minimum zoom level")
	tilesCmd.Flags().Int("max-zoom", 14, "Maximum zoom level")
	cli.Root().AddCommand(tilesCmd)

	cli.Run()
}
