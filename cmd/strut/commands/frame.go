package commands

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/agiangrant/strut"
	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/internal/wire"
	"github.com/agiangrant/strut/render"
	"github.com/agiangrant/strut/retained"
)

// Frame lays out and draws the demo scene headlessly and writes the
// resulting transactions in the wire format.
func Frame(args []string) error {
	fs := flag.NewFlagSet("frame", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (defaults when empty)")
	output := fs.String("o", "frame.strt", "Output file, - for stdout")
	scroll := fs.Float64("scroll", 0, "Lines to scroll the demo view before drawing")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	var w io.WriteCloser = os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *output, err)
		}
		w = f
	}

	app, err := strut.New(strut.Options{Config: cfg, Output: w})
	if err != nil {
		w.Close()
		return err
	}
	runErr := func() error {
		if err := buildDemo(app); err != nil {
			return err
		}
		loop := app.Loop()
		if err := loop.Settle(10); err != nil {
			return err
		}
		if *scroll != 0 {
			// over the scroll view
			loop.HandleInput(retained.PointerMoved{Position: geom.Pt(400, 100)})
			loop.HandleInput(retained.WheelScrolled{Delta: retained.LineDelta(0, float32(-*scroll))})
			if err := loop.Settle(10); err != nil {
				return err
			}
		}
		stats := loop.Stats()
		app.Logger().Info("frames written", "frames", stats.Frames, "events", stats.Events, "output", *output)
		return nil
	}()
	// Close flushes the stream and closes the file.
	if err := app.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Dump prints a summary of every frame in a wire file.
func Dump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	items := fs.Bool("items", false, "List display items")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: strut dump [-items] <file>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fs.Arg(0), err)
	}
	defer f.Close()
	frames, err := wire.ReadAll(bufio.NewReader(f))
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for i, fr := range frames {
		fmt.Fprintf(out, "frame %d doc %d\n", i, fr.Document)
		for _, op := range fr.Transaction.Ops {
			fmt.Fprintf(out, "  %s", op.Kind)
			switch op.Kind {
			case render.TxSetDisplayList:
				dl := op.DisplayList
				fmt.Fprintf(out, " epoch %d size %gx%g bg %s items %d", op.Epoch, dl.Size.Width, dl.Size.Height, dl.Background, len(dl.Items))
			case render.TxUpdateResources:
				fmt.Fprintf(out, " %d updates", len(op.Resources))
			case render.TxSetWindowParameters:
				fmt.Fprintf(out, " %gx%g dpr %g", op.WindowSize.Width, op.WindowSize.Height, op.DevicePixelRatio)
			}
			fmt.Fprintln(out)
			if *items && op.DisplayList != nil {
				for _, it := range op.DisplayList.Items {
					fmt.Fprintf(out, "    %T %v\n", it, it.Info().Rect)
				}
			}
		}
	}
	return nil
}
