// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the persistent catalog, embedding backends
// and repository crawlers.
package driven
