package config

// ComposerConfig holds the whole configuration of the composite oracle daemon
type ComposerConfig struct {
	GeneralConfig GeneralConfig
	Api           ApiConfig
	Feeds         []FeedConfig
}

// GeneralConfig holds the engine-wide settings
type GeneralConfig struct {
	NetworkAddress        string
	BaseDecimals          uint32
	StaleTimeoutInSeconds uint64
	HeartbeatInSeconds    uint64
	PollIntervalInSeconds uint64
	ManagerKeyFile        string
	Logs                  LogsConfig
}

// LogsConfig holds the file-logging settings
type LogsConfig struct {
	LogFileLifeSpanInSec int
	LogFileLifeSpanInMB  int
}

// ApiConfig holds the REST API settings
type ApiConfig struct {
	AllowedOrigins []string
}

// FeedConfig describes one asset's feed seeded at startup
type FeedConfig struct {
	Asset                 string
	StaleTimeoutInSeconds int64 // negative means "use the engine default"
	Legs                  []LegConfig
}

// LegConfig describes one leg of a seeded feed
type LegConfig struct {
	Kind                 string
	Source               string
	LowerThresholdInBase string
	FixedPriceInBase     string
}

// ContextFlagsConfig holds the values for the CLI flags
type ContextFlagsConfig struct {
	WorkingDir        string
	LogLevel          string
	ConfigurationFile string
	SaveLogFile       bool
	EnableLogName     bool
	DisableAnsiColor  bool
	RestApiInterface  string
}
