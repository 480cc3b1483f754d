// Package console runs a local starter driven from an interactive prompt.
//
// Pressing Enter starts a sequence; the countdown and the cues are rendered to
// the terminal while the OS speech and sound commands play them.
package console
