package commands

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agiangrant/strut"
)

// Run drives the demo scene in real time, streaming frames to the output,
// until interrupted or the duration elapses. The config file, when given, is
// watched and applied live.
func Run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file to load and watch")
	output := fs.String("o", "", "Stream frames to this file (discarded when empty)")
	duration := fs.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	var w io.Writer = io.Discard
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		w = f
	}

	app, err := strut.New(strut.Options{Config: cfg, ConfigPath: *configPath, Output: w})
	if err != nil {
		return err
	}
	defer app.Close()
	if err := buildDemo(app); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	start := time.Now()
	if err := app.Run(ctx); err != nil {
		return err
	}
	stats := app.Loop().Stats()
	app.Logger().Info("stopped", "elapsed", time.Since(start).Round(time.Millisecond), "ticks", stats.Ticks, "frames", stats.Frames, "dropped", stats.Dropped)
	return nil
}
