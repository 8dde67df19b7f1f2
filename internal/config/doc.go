// Package config centralizes application configuration and filesystem
// path resolution. Configuration merges three layers: built-in defaults
// (including the WEO release list, indicator set, country table, display
// order and continent grouping), an optional config.yaml, and EMB_*
// environment variables, with the environment taking precedence.
package config
