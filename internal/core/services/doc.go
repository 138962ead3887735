// Package services implements the driving port interfaces.
// Services contain the content pipeline and orchestrate calls to driven
// ports (adapters): site resolution, the per-source streams, blob fetching
// through the cache tiers, and the engine that merges it all.
package services
