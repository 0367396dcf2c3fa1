// Package driving provides interfaces implemented by core services and
// consumed by caller layers (primary/inbound ports).
package driving
