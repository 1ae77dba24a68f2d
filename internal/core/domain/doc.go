// Package domain defines the core domain models for genback.
//
// Domain models are pure values without IO dependencies:
//
//   - Interval and Cycle: retention tiers and their periods
//   - SortIntervals: execution order (descending priority)
//   - Snapshot and Mode: timestamp-named generations and allocation outcomes
//   - DomainError: coded errors shared by the engine and the CLI
package domain
