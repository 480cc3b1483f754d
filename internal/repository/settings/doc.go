// Package settings persists the starter configuration and the settings
// snapshot.
//
// Two backends implement the same contract: FileRepository keeps a YAML
// document on disk, BadgerRepository keeps CBOR values in a Badger key-value
// store. Both keep the starter configuration under the "delay" key and the
// voice/starter/theme snapshot under the "settings" key. Loads never fail:
// absent or out-of-domain values are replaced by defaults field by field.
package settings
