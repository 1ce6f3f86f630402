package simapi

// Config defines the configuration structure for the simulation daemon.
// Zero durations fall back to the engine defaults.
type Config struct {
	Http struct {
		ServerName string `mapstructure:"server_name"`
		Listen     string `mapstructure:"listen"`
		Debug      bool   `mapstructure:"debug"`
	} `mapstructure:"http"`
	Sim struct {
		FloorplanPath   string  `mapstructure:"floorplan"`
		FrameIntervalMs int     `mapstructure:"frame_interval_ms"`
		WanderTickMs    int     `mapstructure:"wander_tick_ms"`
		DwellMs         int     `mapstructure:"dwell_ms"`
		MoveMs          int     `mapstructure:"move_ms"`
		EmitIntervalMs  int     `mapstructure:"emit_interval_ms"`
		PulseLifetimeMs int     `mapstructure:"pulse_lifetime_ms"`
		JitterPx        float64 `mapstructure:"jitter_px"`
		PaddingPx       float64 `mapstructure:"padding_px"`
	} `mapstructure:"sim"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}
