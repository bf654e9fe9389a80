// Package cache implements the per-notebook catalog cache: a
// thread-safe map with age-based fresh/stale/expired status resolution
// and shift-threshold invalidation, plus a singleflight-backed
// regeneration path that collapses concurrent cache-miss generations of
// the same notebook's catalog into one call.
package cache
