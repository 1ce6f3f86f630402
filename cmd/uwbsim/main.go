package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/signalsfoundry/uwb-floorsim/core"
	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/timectrl"
)

// uwbsim runs the simulation headless for a fixed duration and prints tag
// motion and room-entry events to stdout. Handy for eyeballing the engine
// without a renderer attached.
func main() {
	duration := flag.Duration("duration", 60*time.Second, "total simulation duration")
	frame := flag.Duration("frame", 50*time.Millisecond, "frame tick interval")
	floorplan := flag.String("floorplan", "configs/floorplan.json", "path to the floor plan JSON")
	flag.Parse()

	f, err := os.Open(*floorplan)
	if err != nil {
		panic(fmt.Errorf("failed to open floor plan %q: %w", *floorplan, err))
	}
	plan, err := core.LoadFloorPlan(f)
	f.Close()
	if err != nil {
		panic(fmt.Errorf("failed to load floor plan: %w", err))
	}

	fmt.Printf("Loaded floor plan: %d rooms, %d path steps\n", len(plan.Rooms), len(plan.Path))

	engine, err := core.NewSimulationEngine(
		plan.Surface(),
		plan.RoomIDs(),
		plan.Path,
		core.EngineConfig{},
		logging.Noop(),
	)
	if err != nil {
		panic(err)
	}

	var printed int
	var lastEvents int
	engine.RegisterTickListener(func(now time.Time) {
		// One status line per second; events as they happen.
		entries := engine.Events.Entries()
		for _, entry := range entries[lastEvents:] {
			fmt.Printf("[%s] %s\n", entry.Time, entry.Message)
		}
		lastEvents = len(entries)

		printed++
		if time.Duration(printed)*(*frame) < time.Second {
			return
		}
		printed = 0

		tag := engine.Scheduler.TagState()
		fmt.Printf("[%s] tag in %-12s @ (%6.1f, %6.1f) phase=%-10s pulses=%d\n",
			now.Format("15:04:05"),
			tag.Room,
			tag.Position.X, tag.Position.Y,
			engine.Scheduler.Phase(),
			len(engine.Emitter.Pulses()),
		)
	})

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	driver := timectrl.NewFrameDriver(*frame, timectrl.WallClock{})
	driver.AddListener(engine.Advance)

	fmt.Printf("Starting simulation: duration=%s, frame=%s\n", *duration, *frame)
	<-driver.Start(ctx)
	fmt.Println("Simulation complete.")
}
