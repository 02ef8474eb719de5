// Package dag orders named nodes by their dependencies. The plan builder
// uses it to put stages in depends_on order; nodes without an ordering
// constraint keep the order in which they were added.
package dag
