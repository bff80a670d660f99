// Package config holds the settings of the treetab command. Settings are
// read from an optional YAML file and then overridden by command-line
// flags.
package config
