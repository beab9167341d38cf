package domain

// Config mirrors ~/.task-sh/config.yaml. It is loaded once at startup into
// an immutable value and passed explicitly to the components that need it;
// credentials and the test-mode override are resolved from the environment
// during load and never written back to disk.
type Config struct {
	ConfigFormatVersion string           `yaml:"config_format_version" mapstructure:"config_format_version"`
	Preferences         Preferences      `yaml:"preferences" mapstructure:"preferences"`
	Backend             BackendSettings  `yaml:"backend" mapstructure:"backend"`
	Security            SecuritySettings `yaml:"security" mapstructure:"security"`
	History             HistorySettings  `yaml:"history" mapstructure:"history"`
	Context             ContextSettings  `yaml:"context" mapstructure:"context"`
}

// Preferences captures user-level toggles.
type Preferences struct {
	DefaultShell string `yaml:"default_shell" mapstructure:"default_shell"`
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
	Spinner      bool   `yaml:"spinner" mapstructure:"spinner"`
}

// BackendSettings configures the generation backend. APIKey and FakeResponse
// are environment-resolved at load time and excluded from serialization.
type BackendSettings struct {
	Endpoint       string  `yaml:"endpoint" mapstructure:"endpoint"`
	Model          string  `yaml:"model" mapstructure:"model"`
	AuthEnvVar     string  `yaml:"auth_env_var" mapstructure:"auth_env_var"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSeconds int     `yaml:"timeout" mapstructure:"timeout"`
	SystemPrompt   string  `yaml:"system_prompt" mapstructure:"system_prompt"`

	APIKey       string `yaml:"-" mapstructure:"-"`
	FakeResponse string `yaml:"-" mapstructure:"-"`
}

// SecuritySettings defines safety filter behavior.
type SecuritySettings struct {
	RulesFile      string `yaml:"rules_file" mapstructure:"rules_file"`
	StructuralScan bool   `yaml:"structural_scan" mapstructure:"structural_scan"`
}

// HistorySettings controls the local generation record.
type HistorySettings struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// ContextSettings configures prompt context collection.
type ContextSettings struct {
	IncludeMachine bool `yaml:"include_machine" mapstructure:"include_machine"`
}
