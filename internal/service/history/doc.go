// Package history turns the controller's snapshot stream into run records.
package history
