package domain

// DefaultRuleFile is the rule file name looked up in the working
// directory when no -f flag is given.
const DefaultRuleFile = "Remakefile"

// DepFileName is the persisted dependency file written next to the rule
// file after every run.
const DepFileName = ".remake"

// Config carries the tool defaults read from an optional .remake.yaml in
// the working directory. Command-line flags override any value set here.
type Config struct {
	Jobs      int
	KeepGoing bool
	Silent    bool
	Echo      bool
	RuleFile  string
}

// DefaultConfig returns the built-in defaults: one job at a time, stop on
// the first failure, announce targets, do not echo scripts.
func DefaultConfig() *Config {
	return &Config{
		Jobs:     1,
		RuleFile: DefaultRuleFile,
	}
}
