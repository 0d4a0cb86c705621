package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"
	"github.com/zeozeozeo/gopsx-core/emulator"
)

func main() {
	app := cli.NewApp()
	app.Name = "gopsx-core"
	app.Description = "Headless PlayStation machine core: CPU, bus, DMA and GPU front-end"
	app.Usage = "gopsx-core [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "bios",
			Usage: "path to the BIOS image (must be exactly 512KB)",
			Value: "SCPH1001.BIN",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug-level logging",
		},
		cli.DurationFlag{
			Name:  "duration",
			Usage: "stop the machine after this much wall-clock time (0 = run until an error or Ctrl-C)",
			Value: 0,
		},
	}
	app.Action = runMachine

	if err := app.Run(os.Args); err != nil {
		slog.Error("gopsx-core: exiting", "error", err)
		os.Exit(1)
	}
}

func runMachine(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	bios, err := loadBios(c.String("bios"))
	if err != nil {
		return err
	}

	sink := emulator.NewGpuMsgSink()
	machine := emulator.NewMachine(bios, sink)

	done := make(chan struct{})
	go drainGpuMessages(sink, done)

	if d := c.Duration("duration"); d > 0 {
		go func() {
			time.Sleep(d)
			machine.Shutdown()
		}()
	}

	slog.Info("gopsx-core: machine starting", "pc", fmt.Sprintf("0x%08x", machine.CPU.PC))
	err = machine.Run()

	sink.Close()
	close(done)

	if err != nil {
		return err
	}
	slog.Info("gopsx-core: machine stopped")
	return nil
}

// drainGpuMessages stands in for the presentation thread: this machine
// core has no rasterizer of its own (§1, §9), so it simply logs draw
// traffic at debug level to keep the rendezvous slot (see message.go)
// from filling up and stalling the emulator thread
func drainGpuMessages(sink *emulator.GpuMsgSink, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}

		msg, ok := sink.Consume()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}

		switch msg.Kind {
		case emulator.GpuMsgTriangle:
			slog.Debug("gpu: triangle", "vertices", msg.Vertices[:3])
		case emulator.GpuMsgQuad:
			slog.Debug("gpu: quad", "vertices", msg.Vertices)
		case emulator.GpuMsgOffset:
			slog.Debug("gpu: drawing offset", "x", msg.OffsetX, "y", msg.OffsetY)
		case emulator.GpuMsgDraw:
			slog.Debug("gpu: draw barrier")
		}
	}
}

func loadBios(path string) (*emulator.BIOS, error) {
	slog.Info("gopsx-core: loading bios", "path", path)
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	bios, err := emulator.LoadBIOS(file)
	if err != nil {
		return nil, err
	}

	slog.Info("gopsx-core: bios loaded", "elapsed", time.Since(start))
	return bios, nil
}
