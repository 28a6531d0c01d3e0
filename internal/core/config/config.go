package config

import "time"

// Config is the on-disk configuration (pyannotate.toml).
type Config struct {
	Version  int      `toml:"version"`
	Pylint   Pylint   `toml:"pylint"`
	Annotate Annotate `toml:"annotate"`
	Exclude  Exclude  `toml:"exclude"`
	Output   Output   `toml:"output"`
}

// Pylint controls how the analyzer is invoked.
type Pylint struct {
	Command string        `toml:"command"`
	Args    []string      `toml:"args"`
	Timeout time.Duration `toml:"timeout"`
	// Rate caps pylint launches per second; 0 means unlimited.
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type Annotate struct {
	// Rule is used when no -rule flag is given.
	Rule string `toml:"rule"`
	// SkipExisting stops a second run from inserting a duplicate pair.
	SkipExisting bool `toml:"skip_existing"`
	Workers      int  `toml:"workers"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"` // glob patterns, matched against slash paths
}

type Output struct {
	Diff            bool   `toml:"diff"`
	Color           bool   `toml:"color"`
	MetricsTextfile string `toml:"metrics_textfile"`
}
