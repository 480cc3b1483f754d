// Package client implements the remote commands of sprint-start.
//
// The commands connect to a starter-server to start, reset or follow the
// sequence, and read or change the starter configuration either remotely or
// directly in the local store.
package client
