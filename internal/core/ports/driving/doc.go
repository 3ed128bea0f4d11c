// Package driving provides interfaces for primary/inbound ports consumed
// by the CLI and any thin API wrapper.
package driving
