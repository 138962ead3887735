// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - SiteStore, PageStore, FileStore, ListStore: Read access to the three stores
//   - PoolChecker: Reports unconfigured store pools before streaming starts
//   - BlobOrigin: Downloads stored files
//   - FastCache, DurableCache: The two blob cache tiers
//   - Executor: Bounded worker pools for CPU-bound extraction
//   - BodyExtractor, ListSerialiser, DocumentExtractor: Content extractors
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - Metrics: Pipeline counters. Without it nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
