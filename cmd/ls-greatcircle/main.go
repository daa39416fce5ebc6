// Command ls-greatcircle shows a world map in the terminal as seen through a
// rotation of the sphere picked by clicking up to two anchor points.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-greatcircle/internal/config"
	"github.com/litescript/ls-greatcircle/internal/logging"
	"github.com/litescript/ls-greatcircle/internal/metrics"
	"github.com/litescript/ls-greatcircle/internal/raster"
	"github.com/litescript/ls-greatcircle/internal/recompute"
	"github.com/litescript/ls-greatcircle/internal/remap"
	"github.com/litescript/ls-greatcircle/internal/state"
	"github.com/litescript/ls-greatcircle/internal/ui"
)

const defaultHeadlessOut = "greatcircle.png"

// anchorFlags collects repeated -anchor u,v flags.
type anchorFlags []remap.Anchor

func (a *anchorFlags) String() string {
	parts := make([]string, len(*a))
	for i, p := range *a {
		parts[i] = fmt.Sprintf("%g,%g", p.U, p.V)
	}
	return strings.Join(parts, " ")
}

func (a *anchorFlags) Set(s string) error {
	p, err := config.ParseAnchor(s)
	if err != nil {
		return err
	}
	*a = append(*a, p)
	return nil
}

func main() {
	var (
		anchors anchorFlags
		flags   config.Flags
	)
	configPath := flag.String("config", "", "JSON config file")
	flag.StringVar(&flags.Source, "source", "", "Equirectangular source map (png, jpg, gif, bmp, tiff, webp, tga); default is a built-in graticule")
	flag.IntVar(&flags.MaxSourceWidth, "max-source-width", 0, "Downscale wider source maps to this width")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&flags.LogFile, "log-file", "", "Append log output to this file")
	flag.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flag.Var(&anchors, "anchor", "Anchor as u,v map fractions, or \"sun\"; repeat for a second anchor")
	out := flag.String("out", "", "Render once to this .png or .webp file and exit")
	size := flag.String("size", "", "Headless output size as WxH")
	flag.Parse()

	flags.Anchors = anchors
	if *size != "" {
		w, h, err := config.ParseSize(*size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		flags.OutputWidth, flags.OutputHeight = w, h
	}

	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(flags)

	headless := *out != "" || !term.IsTerminal(int(os.Stdout.Fd()))

	// The TUI owns the terminal, so it only logs to a file.
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	var logOut io.Writer = os.Stderr
	if !headless {
		logOut = io.Discard
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if headless {
			logOut = io.MultiWriter(os.Stderr, f)
		} else {
			logOut = f
		}
	}
	logger.SetOutput(logOut)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, logger)
	}

	src, err := loadSource(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sampler := raster.NewSampler(src)

	stateCfg := state.DefaultConfig()
	stateCfg.Width, stateCfg.Height = cfg.OutputWidth, cfg.OutputHeight
	stateMgr := state.NewManager(stateCfg, logger)
	if seed := cfg.AnchorList(); len(seed) > 0 {
		stateMgr.SetAnchors(seed)
	}

	spawner := recompute.NewGoSpawner(logger)
	machine := recompute.NewMachine(ctx, spawner)

	if headless {
		path := *out
		if path == "" {
			path = defaultHeadlessOut
		}
		if err := runHeadless(machine, spawner, stateMgr, sampler, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	model := ui.New(stateMgr, machine, sampler, logger, ui.Options{PollInterval: cfg.PollInterval()})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	spawner.Notify = ui.Notify(p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	cancel()
	spawner.Wait()
}

func loadSource(cfg config.Config, logger *logging.Logger) (*raster.SourceRaster, error) {
	if cfg.Source == "" {
		logger.Info("no source map configured, using built-in graticule")
		return raster.Graticule(cfg.MaxSourceWidth/2, cfg.MaxSourceWidth/4), nil
	}

	start := time.Now()
	src, err := raster.Load(cfg.Source, cfg.MaxSourceWidth)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded %s (%dx%d) in %v", cfg.Source, src.Width(), src.Height(), time.Since(start).Round(time.Millisecond))
	return src, nil
}

// runHeadless renders the seeded view once through the same state machine
// the TUI uses and exports it.
func runHeadless(machine *recompute.Machine, spawner *recompute.GoSpawner, stateMgr *state.Manager, sampler *raster.Sampler, path string) error {
	w, h := stateMgr.Size()
	gen := machine.Request(recompute.Job{
		Width:    w,
		Height:   h,
		Sampler:  sampler,
		Remapper: stateMgr.Remapper(),
	})
	stateMgr.RecordRequest(gen)
	spawner.Wait()

	img, phase := machine.Poll()
	if _, ok := phase.(recompute.Stable); !ok || img == nil {
		return fmt.Errorf("render did not finish (phase %s)", phase)
	}
	stateMgr.RecordResult(img)

	if err := raster.Export(path, img); err != nil {
		return err
	}
	stateMgr.RecordExport(path)

	snap := stateMgr.Snapshot()
	fmt.Printf("wrote %s (%dx%d, %v)\n", path, img.Width(), img.Height(), img.Elapsed.Round(time.Millisecond))
	for _, e := range snap.Events {
		fmt.Printf("  %s  %s\n", e.Timestamp.Format("15:04:05"), e)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server: %v", err)
	}
}
