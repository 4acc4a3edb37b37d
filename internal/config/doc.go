// Package config loads editor settings from a TOML file.
//
// Missing files are not errors; the defaults apply. A file that parses but
// fails validation is rejected whole rather than half-applied.
package config
