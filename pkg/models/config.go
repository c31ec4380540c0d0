package models

// ProjectConfig holds the project identity.
type ProjectConfig struct {
	Name string `yaml:"name" mapstructure:"name" json:"name"`
}

// VerificationConfig lists external check commands run by tooling outside
// the core (for example an assistant verifying its work).
type VerificationConfig struct {
	Commands []string `yaml:"commands" mapstructure:"commands" json:"commands"`
}

// Config is the shape shared by the global and project config documents.
type Config struct {
	Project      ProjectConfig       `yaml:"project" mapstructure:"project" json:"project"`
	Verification *VerificationConfig `yaml:"verification,omitempty" mapstructure:"verification" json:"verification,omitempty"`
}

// VerificationCommands returns the configured commands, or nil.
func (c *Config) VerificationCommands() []string {
	if c == nil || c.Verification == nil {
		return nil
	}
	return c.Verification.Commands
}
