// Package history keeps an append-only CBOR log of started runs.
package history
