package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile       = flag.String("log-file", "", "Write logs to a rotating file")
	flagNormalWidth   = flag.Int("normal-width", 0, "Floats per normal in vertex buffers (>= 3)")
	flagTexCoordWidth = flag.Int("texcoord-width", 0, "Floats per texture coordinate in vertex buffers (>= 3)")
	flagLayout        = flag.String("layout", "", "Vertex layout, e.g. position,normal,texcoord")
	flagIndexType     = flag.String("index-type", "", "Index type: auto, uint8, uint16, uint32")
	flagWorkers       = flag.Int("j", 0, "Concurrent parses for batch commands")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagNormalWidth > 0 {
		cfg.Parser.NormalWidth = *flagNormalWidth
	}
	if *flagTexCoordWidth > 0 {
		cfg.Parser.TexCoordWidth = *flagTexCoordWidth
	}
	if *flagLayout != "" {
		cfg.Buffer.Layout = splitList(*flagLayout)
	}
	if *flagIndexType != "" {
		cfg.Buffer.IndexType = *flagIndexType
	}
	if *flagWorkers > 0 {
		cfg.Cache.Workers = *flagWorkers
	}
}
