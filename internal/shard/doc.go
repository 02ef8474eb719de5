// Package shard names the parallel partitions of a chunked test suite.
//
// The planner is purely combinatorial. It never assigns test files to a
// partition; that is left to the suite's own splitting script, which is
// handed the same index and total this package produces.
package shard
