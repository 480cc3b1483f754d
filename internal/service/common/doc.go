// Package common is shared by the sprint-start client, console and server:
// the StarterService client with per-call timeouts, actor detection for
// remote start and reset requests, and log level setup from config.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
