package services

import (
	"time"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Skip reasons reported to driven.Metrics.
const (
	skipEmpty       = "empty"
	skipParse       = "parse"
	skipFetch       = "fetch"
	skipUnsupported = "unsupported"
	skipExtraction  = "extraction"
)

// nopMetrics is used when no metrics sink is configured.
type nopMetrics struct{}

var _ driven.Metrics = nopMetrics{}

func (nopMetrics) RecordEmitted(domain.ContentType)         {}
func (nopMetrics) RecordSkipped(domain.ContentType, string) {}
func (nopMetrics) RecordCacheLookup(string, bool)           {}
func (nopMetrics) RecordDownload(bool)                      {}
func (nopMetrics) ObserveExtraction(string, time.Duration)  {}
