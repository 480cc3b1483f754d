// Package logger wraps zap with the conventions used across sprint-start:
//   - a global sugared logger with a console encoder and an atomic level,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - leveled helpers (Infof, WarnKV, ...) that log through the context's logger.
//
// Components receive a context and pull their logger from it, so a run ID or a
// component name attached once shows up on every line below it.
package logger
