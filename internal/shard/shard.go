package shard

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
)

// ErrInvalidShardCount is matched by every InvalidShardCountError.
var ErrInvalidShardCount = errors.New("invalid shard count")

// InvalidShardCountError is returned when fewer than one shard is requested.
type InvalidShardCountError struct {
	Total int
}

func (e *InvalidShardCountError) Error() string {
	return fmt.Sprintf("invalid shard count %d: at least one shard is required", e.Total)
}

// Is makes errors.Is(err, ErrInvalidShardCount) match.
func (e *InvalidShardCountError) Is(target error) bool {
	return target == ErrInvalidShardCount
}

// Descriptor identifies one shard.
type Descriptor struct {
	Total int
	// Index is 1-based.
	Index int
	Label string
}

// Plan returns a lazy sequence of total descriptors, indexed from 1.
func Plan(total int) (iter.Seq[Descriptor], error) {
	if total < 1 {
		return nil, &InvalidShardCountError{Total: total}
	}
	return func(yield func(Descriptor) bool) {
		for i := 1; i <= total; i++ {
			if !yield(Descriptor{Total: total, Index: i, Label: Label(i, total)}) {
				return
			}
		}
	}, nil
}

// All materializes Plan(total).
func All(total int) ([]Descriptor, error) {
	seq, err := Plan(total)
	if err != nil {
		return nil, err
	}
	out := make([]Descriptor, 0, total)
	for d := range seq {
		out = append(out, d)
	}
	return out, nil
}

// Label formats index for a plan of total shards. Labels are zero padded to
// two digits once total reaches 10; past 99 the width follows the digit
// count of total so labels stay distinct and sortable.
func Label(index, total int) string {
	width := 1
	if total >= 10 {
		width = max(2, len(strconv.Itoa(total)))
	}
	return fmt.Sprintf("%0*d", width, index)
}
