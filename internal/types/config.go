package types

type RunMode string

const (
	// ModeLocal runs the api server against a local database
	ModeLocal RunMode = "local"
	// ModeAPI runs the api server
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
