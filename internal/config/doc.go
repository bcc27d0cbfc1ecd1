// Package config loads, validates, and defaults tonearm's TOML
// configuration: library paths, provider endpoints and rate ceilings,
// scoring policy values, and logging options.
package config
