// Package cache provides a time-boxed key/value cache for remote-call
// results. Entries live under a namespaced key prefix in a Store (disk or
// memory) and expire after their TTL; an expired entry is deleted on the
// next read.
package cache
