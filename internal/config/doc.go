// Package config defines the application settings shared by the sprint-start
// binaries and provides helpers to load, validate and save them in YAML.
//
// Values from a .env file and SPRINT_START_* environment variables override
// the file, see ApplyEnvironment.
package config
