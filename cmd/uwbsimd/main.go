package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/uwb-floorsim/core"
	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/internal/observability"
	"github.com/signalsfoundry/uwb-floorsim/internal/simapi"
	"github.com/signalsfoundry/uwb-floorsim/timectrl"
)

func main() {
	var err error
	var configFile string
	var config simapi.Config

	rootCmd := &cobra.Command{
		Use:   "uwbsimd",
		Short: "UWB positioning simulation engine with an HTTP/WebSocket API for renderers",
		// Main Entry Point
		Run: func(c *cobra.Command, args []string) {
			if err := run(config); err != nil {
				log.Fatalf("Failed on start: %v", err)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/uwbsimd.json", "Path to configuration")

	// Defaults
	viper.SetDefault("http.listen", ":8087")
	viper.SetDefault("http.server_name", "uwbsimd")
	viper.SetDefault("sim.floorplan", "configs/floorplan.json")
	viper.SetDefault("sim.frame_interval_ms", 16)

	// Read Configuration File Before Start
	cobra.OnInitialize(func() {
		_, err := os.Stat(configFile)
		if os.IsNotExist(err) {
			envConfFile := os.Getenv("CONFIG_FILE")
			if envConfFile != "" {
				if _, err := os.Stat(envConfFile); os.IsNotExist(err) {
					log.Fatalf("Config file %s does not exist!", envConfFile)
				}
				configFile = envConfFile
			} else {
				// No config file; run entirely on defaults.
				if err := viper.Unmarshal(&config); err != nil {
					log.Fatalf("Failed to build default config: %v", err)
				}
				return
			}
		}

		viper.SetConfigFile(configFile)
		viper.SetConfigType("json")
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}
		if err := viper.Unmarshal(&config); err != nil {
			log.Fatalf("Failed to parse config: %v", err)
		}
		log.Printf("Loaded config file: %s", configFile)
	})

	err = rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg simapi.Config) error {
	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), logger)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.Sim.FloorplanPath)
	if err != nil {
		return err
	}
	plan, err := core.LoadFloorPlan(f)
	f.Close()
	if err != nil {
		return err
	}

	surface := plan.Surface()
	engine, err := core.NewSimulationEngine(
		surface,
		plan.RoomIDs(),
		plan.Path,
		engineConfig(cfg),
		logger,
		core.WithEngineMetrics(collector),
	)
	if err != nil {
		return err
	}

	driver := timectrl.NewFrameDriver(msDuration(cfg.Sim.FrameIntervalMs), timectrl.WallClock{})
	driver.AddListener(engine.Advance)
	driverDone := driver.Start(ctx)

	server, err := simapi.New(cfg, engine, surface, collector, logger)
	if err != nil {
		return err
	}

	err = server.Run(ctx)
	<-driverDone
	logger.Info(context.Background(), "simulation stopped")
	return err
}

func engineConfig(cfg simapi.Config) core.EngineConfig {
	return core.EngineConfig{
		Scheduler: core.SchedulerConfig{
			WanderTick:    msDuration(cfg.Sim.WanderTickMs),
			DwellDuration: msDuration(cfg.Sim.DwellMs),
			MoveDuration:  msDuration(cfg.Sim.MoveMs),
			JitterMax:     cfg.Sim.JitterPx,
			Padding:       cfg.Sim.PaddingPx,
		},
		Emitter: core.EmitterConfig{
			Interval: msDuration(cfg.Sim.EmitIntervalMs),
			Lifetime: msDuration(cfg.Sim.PulseLifetimeMs),
		},
	}
}

func msDuration(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
