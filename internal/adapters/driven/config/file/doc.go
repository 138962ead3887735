// Package file provides the file-backed configuration adapter.
//
//   - ConfigStore: TOML configuration with flattened dot-notation keys
//   - LoadSettings: typed application settings decoded from a ConfigStore
//   - LoadEnv: optional .env file for secrets referenced by dsn_env keys
package file
