package logging

import "time"

// #region config

// Config selects the log level, format and optional file sink.
type Config struct {
	Level   string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `json:"format" yaml:"format" validate:"omitempty,oneof=text json"`
	File    string `json:"file" yaml:"file"`
	Service string `json:"service" yaml:"service"`
}

// DefaultConfig logs text at info level to stderr only.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Service: "cadyn"}
}

// #endregion config

// #region provenance-entry

// Trigger types recorded in the provenance log.
const (
	TriggerCLI    = "cli"
	TriggerHTTP   = "http"
	TriggerGRPC   = "grpc"
	TriggerReplay = "replay"
)

// ProvenanceEntry is a single row in the provenance_log table. It ties a
// stored report to the surface that produced it and the configuration in
// force at the time.
type ProvenanceEntry struct {
	ReportID    string    `json:"report_id"`
	TriggerType string    `json:"trigger_type"`
	Class       string    `json:"class"`
	Confidence  float64   `json:"confidence"`
	ConfigJSON  string    `json:"config_json,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// #endregion provenance-entry
