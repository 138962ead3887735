// Package domain defines the core business entities for sitesearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentRecord: A normalised unit of site content handed to callers
//   - Site: A resolved site (tenant) identity
//   - PageRow, FileRow, ListRow: Typed rows decoded at the store boundary
//   - Blob: Downloaded bytes of a stored file
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
