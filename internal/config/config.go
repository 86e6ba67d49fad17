package config

// RunConfig holds configuration for one generation run.
type RunConfig struct {
	ExecutionSite string // Site outer jobs execute on (default "condorpool")
	OutputFile    string // Workflow artifact file name (default "workflow.yml")
	RunDir        string // Directory artifacts are written to (default ".")
	SkipSites     bool   // Skip site catalog creation
	PlannerBinary string // External planner binary (default "skein-plan")
	Submit        bool   // Pass --submit to the planner
	Verbosity     int    // Planner verbosity (count of -v)
	PublishTo     string // Optional storage destination URL (file:// or s3://)
	ReplicaDB     string // Optional SQLite replica store path
	LogLevel      string // Log level: debug, info, warn, error
	LogFormat     string // Log format: text, json
}

// DefaultRunConfig returns sensible defaults.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		ExecutionSite: "condorpool",
		OutputFile:    "workflow.yml",
		RunDir:        ".",
		PlannerBinary: "skein-plan",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}
