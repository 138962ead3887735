package driven

import (
	"time"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// Cache tiers reported to Metrics.
const (
	TierFast    = "fast"
	TierDurable = "durable"
)

// Metrics records pipeline activity.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// RecordEmitted counts a record yielded by a source stream.
	RecordEmitted(t domain.ContentType)

	// RecordSkipped counts a record dropped by a source stream.
	RecordSkipped(t domain.ContentType, reason string)

	// RecordCacheLookup counts a blob cache lookup on a tier.
	RecordCacheLookup(tier string, hit bool)

	// RecordDownload counts a blob download attempt.
	RecordDownload(ok bool)

	// ObserveExtraction records how long a CPU-bound extraction took.
	ObserveExtraction(kind string, d time.Duration)
}
