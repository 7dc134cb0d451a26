// Package resource implements the Controller for global limits shared by stores and tools.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: Track and limit memory charged by record caches (non-blocking, fail-fast)
//   - Concurrency: Limit tool workers running over different stores at once
//   - IO: Rate-limit bulk tool IO (backup streams) to avoid starving the store
//
// A nil *Controller is valid and imposes no limits.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:     512 << 20,
//	    MaxBackgroundWorkers: 4,
//	    IOLimitBytesPerSec:   64 << 20,
//	})
package resource
