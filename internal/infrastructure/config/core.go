package config

// CoreConfig is the root config for core.json
type CoreConfig struct {
	LogCapacity         int            `json:"logCapacity"`
	FlushInterval       uint32         `json:"flushInterval"`       // ticks between forced flushes
	FieldSampleInterval uint32         `json:"fieldSampleInterval"` // ticks between field samples
	Channels            ChannelsConfig `json:"channels"`
	Script              ScriptConfig   `json:"script"`
	Live                LiveConfig     `json:"live"`
	Status              StatusConfig   `json:"status"`
	SimTrace            SimTraceConfig `json:"simTrace"`
	Record              RecordConfig   `json:"record"`
	Logging             LoggingConfig  `json:"logging"`
}

// ChannelsConfig names the telemetry log channels
type ChannelsConfig struct {
	States   string `json:"states"`
	Fields   string `json:"fields"`
	Phase    string `json:"phase"`
	Course   string `json:"course"`
	SimTrace string `json:"simTrace"`
	Record   string `json:"record"`
}

// ScriptConfig configures the input script resource
type ScriptConfig struct {
	Path         string `json:"path"`
	MaxBytes     int    `json:"maxBytes"`
	MaxKeyframes int    `json:"maxKeyframes"`
}

// LiveConfig configures the live-input resource
type LiveConfig struct {
	Path         string `json:"path"`
	PollInterval uint32 `json:"pollInterval"` // read the resource every N ticks
}

// StatusConfig configures the snapshot slot
type StatusConfig struct {
	Path    string `json:"path"`
	Backend string `json:"backend"` // "file" or "mmap"
}

// SimTraceConfig configures the optional per-tick trace
type SimTraceConfig struct {
	Marker string `json:"marker"` // trace runs only when this file exists
}

// RecordConfig configures the effective-input recorder
type RecordConfig struct {
	Enabled bool `json:"enabled"`
}

// LoggingConfig configures diagnostic logging
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}
