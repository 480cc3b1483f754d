// Package starter contains the core domain types of a race-start sequence.
//
// StarterConfig holds the two stage delays and the jitter class, Settings holds
// the voice, starter sound and theme selections, and State/Snapshot describe
// where a running sequence is and how much countdown is left.
package starter
