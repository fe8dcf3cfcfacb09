// Package capture records the fields written through a netcode stream and
// derives an improved compression model from what was observed.
//
// Captures are collected while running a workload, saved as dumps, merged
// and fed to an Analyzer, which proposes per-context code lengths.
package capture

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/egonelbre/exp-netcompress/netcode"
)

// ContextStats holds what was written to one context.
type ContextStats struct {
	// Counts is the histogram of coded symbols: bucket indices for packed
	// integers and values for nibbles.
	Counts [netcode.AlphabetSize]uint64
	// Values are the packed integers in write order, deltas already folded.
	Values []uint32
}

// Samples returns the number of symbols coded in the context.
func (s *ContextStats) Samples() uint64 {
	var total uint64
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// Capture is the data recorded in one session.
type Capture struct {
	Session uuid.UUID
	// Fingerprint identifies the model the recorded streams were written with.
	Fingerprint uint64
	Contexts    map[int]*ContextStats
}

// New creates an empty capture for streams using model.
func New(model *netcode.Model) *Capture {
	return &Capture{
		Session:     uuid.New(),
		Fingerprint: model.Fingerprint(),
		Contexts:    make(map[int]*ContextStats),
	}
}

// Stats returns the stats for ctx, creating them when missing.
func (c *Capture) Stats(ctx int) *ContextStats {
	stats, ok := c.Contexts[ctx]
	if !ok {
		stats = &ContextStats{}
		c.Contexts[ctx] = stats
	}
	return stats
}

// ContextIDs returns the recorded contexts in increasing order.
func (c *Capture) ContextIDs() []int {
	ids := make([]int, 0, len(c.Contexts))
	for ctx := range c.Contexts {
		ids = append(ids, ctx)
	}
	sort.Ints(ids)
	return ids
}

// Merge adds other's data to c. Captures taken with different models
// cannot be merged.
func (c *Capture) Merge(other *Capture) error {
	if c.Fingerprint != other.Fingerprint {
		return fmt.Errorf("merge session %v: model fingerprint %016x differs from %016x",
			other.Session, other.Fingerprint, c.Fingerprint)
	}
	for _, ctx := range other.ContextIDs() {
		src := other.Contexts[ctx]
		dst := c.Stats(ctx)
		for symbol, n := range src.Counts {
			dst.Counts[symbol] += n
		}
		dst.Values = append(dst.Values, src.Values...)
	}
	return nil
}
