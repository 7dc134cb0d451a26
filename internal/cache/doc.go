// Package cache provides LRU caching for decoded records.
//
// # Record Cache
//
// [LRU] keeps recently read or updated records of one store, keyed by record id.
// Every entry is charged a fixed byte cost (the store's record size), so the
// configured capacity maps directly to a mapped-memory budget.
//
// [Sharded] spreads ids over 64 LRU shards for concurrent readers:
//   - Shard selection via splitmix64 of the id
//   - Per-shard mutex for minimal contention
//   - Integrated with resource.Controller for memory limits
package cache
