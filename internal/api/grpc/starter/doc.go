// Package starter implements the gRPC transport for the sprint starter.
//
// Messages are plain Go structs carried by a CBOR codec registered under the
// "cbor" content subtype; the service descriptor is declared by hand. Server
// adapts a business-service interface to the wire, and the generated-style
// client in this package is wrapped by service/common.
package starter
