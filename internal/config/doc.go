// Package config loads and validates tracker configuration.
//
// Configuration comes from a YAML file with ${VAR} environment
// substitution; a .env file is loaded first so local development does
// not need exported secrets. Optional fields fall back to defaults in
// defaults.go.
package config
