// Package memory provides an in-memory content store implementing every
// store port. It backs service and adapter tests and holds no connections.
package memory
