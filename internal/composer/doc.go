// Package composer assembles Jobs from named fragments.
//
// A Composer renders each fragment in order against one params.Set, adds
// the final tasks, artifacts and requirements its role calls for, and
// returns either a complete Job or an error. It never returns a partially
// built Job. ComposeSharded multiplies one job template across the shards
// of a chunked suite.
package composer
