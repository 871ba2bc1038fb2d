// Package file provides a TOML file-backed implementation of the
// ConfigStore port. Configuration lives in ~/.finsight/config.toml and is
// flattened into dot-notation keys (e.g., "llm.model").
package file
