// Package config loads, normalizes, and validates mdprep configuration.
//
// Configuration comes from a TOML file (default ~/.config/mdprep/config.toml,
// with a project-local mdprep.toml fallback); every field has a sensible
// default so the tool runs without a config file at all. Path fields are
// expanded (~ and relative paths) before use, and subprocess timeouts fall
// back to the defaults the pipeline was tuned with.
package config
