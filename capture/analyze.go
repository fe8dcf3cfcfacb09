package capture

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/egonelbre/exp-netcompress/huffman"
	"github.com/egonelbre/exp-netcompress/netcode"
)

// Analyzer proposes code lengths from captured data.
type Analyzer struct {
	// MaxCodeLength limits the proposed code lengths, defaults to
	// netcode.MaxCodeLength.
	MaxCodeLength int
	// MinSamples is the number of symbols a context needs before it gets
	// its own code lengths.
	MinSamples uint64

	Log logrus.FieldLogger
}

// ContextReport describes the cost of one context in bits.
type ContextReport struct {
	Context int
	Samples uint64

	// Current is the cost with the base model.
	Current uint64
	// Proposed is the cost with the proposed model.
	Proposed uint64
	// Gamma is the cost of Elias gamma coding packed integers, with 4 bits
	// per nibble.
	Gamma uint64
	// Raw is the cost of the raw format.
	Raw uint64

	// Override is set when the proposal replaces the default lengths.
	Override bool
	Lengths  [netcode.AlphabetSize]uint8
}

// Report is the outcome of Analyzer.Propose.
type Report struct {
	Contexts []ContextReport
}

// Total sums the costs over all contexts.
func (r Report) Total() ContextReport {
	total := ContextReport{Context: -1}
	for _, c := range r.Contexts {
		total.Samples += c.Samples
		total.Current += c.Current
		total.Proposed += c.Proposed
		total.Gamma += c.Gamma
		total.Raw += c.Raw
	}
	return total
}

func (a *Analyzer) log() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

// Propose computes a model spec for the data in c. Contexts with enough
// samples get optimal lengths for their smoothed histogram, unless that
// would not improve on base; the remaining contexts keep base's lengths.
func (a *Analyzer) Propose(c *Capture, base *netcode.Model) (netcode.ModelSpec, Report, error) {
	maxLen := a.MaxCodeLength
	if maxLen == 0 {
		maxLen = netcode.MaxCodeLength
	}
	if maxLen > netcode.MaxCodeLength || 1<<maxLen < netcode.AlphabetSize {
		return netcode.ModelSpec{}, Report{}, fmt.Errorf("max code length %d out of range", maxLen)
	}

	log := a.log()
	if c.Fingerprint != base.Fingerprint() {
		log.WithFields(logrus.Fields{
			"session":  c.Session,
			"captured": fmt.Sprintf("%016x", c.Fingerprint),
			"base":     fmt.Sprintf("%016x", base.Fingerprint()),
		}).Warn("capture was recorded with a different model")
	}

	baseSpec := base.Spec()
	overrides := make(map[int][netcode.AlphabetSize]uint8)
	for _, o := range baseSpec.Overrides {
		overrides[int(o.Context)] = o.Lengths
	}

	var report Report
	for _, ctx := range c.ContextIDs() {
		stats := c.Contexts[ctx]
		samples := stats.Samples()
		if samples == 0 {
			continue
		}

		current := base.Lengths(ctx)
		tail := tailBits(stats.Values)
		nibbles := samples - uint64(len(stats.Values))

		entry := ContextReport{
			Context: ctx,
			Samples: samples,
			Current: symbolBits(&stats.Counts, current) + tail,
			Gamma:   gammaBits(stats.Values) + 4*nibbles,
			Raw:     32*uint64(len(stats.Values)) + 4*nibbles,
			Lengths: current,
		}
		entry.Proposed = entry.Current

		fields := logrus.Fields{"context": ctx, "samples": samples}
		if samples < a.MinSamples {
			log.WithFields(fields).Debug("too few samples, keeping lengths")
			report.Contexts = append(report.Contexts, entry)
			continue
		}

		var proposed [netcode.AlphabetSize]uint8
		copy(proposed[:], huffman.CodeLengths(smooth(&stats.Counts), maxLen))

		cost := symbolBits(&stats.Counts, proposed) + tail
		if cost < entry.Current {
			entry.Proposed = cost
			entry.Lengths = proposed
			if proposed == baseSpec.Default {
				delete(overrides, ctx)
			} else {
				overrides[ctx] = proposed
				entry.Override = true
			}
		}
		log.WithFields(fields).WithFields(logrus.Fields{
			"current":  entry.Current,
			"proposed": entry.Proposed,
		}).Debug("analyzed context")

		report.Contexts = append(report.Contexts, entry)
	}

	spec := netcode.ModelSpec{Default: baseSpec.Default}
	for ctx, lengths := range overrides {
		spec.Overrides = append(spec.Overrides, netcode.ContextLengths{
			Context: uint16(ctx),
			Lengths: lengths,
		})
	}
	sort.Slice(spec.Overrides, func(i, k int) bool {
		return spec.Overrides[i].Context < spec.Overrides[k].Context
	})
	if err := spec.Validate(); err != nil {
		return netcode.ModelSpec{}, Report{}, fmt.Errorf("proposed model: %w", err)
	}

	total := report.Total()
	log.WithFields(logrus.Fields{
		"contexts":  len(report.Contexts),
		"overrides": len(spec.Overrides),
		"current":   total.Current,
		"proposed":  total.Proposed,
	}).Info("proposed model")

	return spec, report, nil
}

// smooth adds one to every count so that each symbol keeps a code, scaling
// down first when counts do not fit the code length computation.
func smooth(counts *[netcode.AlphabetSize]uint64) []uint32 {
	var top uint64
	for _, n := range counts {
		if n > top {
			top = n
		}
	}
	shift := 0
	if l := bits.Len64(top); l > 31 {
		shift = l - 31
	}

	freqs := make([]uint32, netcode.AlphabetSize)
	for symbol, n := range counts {
		freqs[symbol] = uint32(n>>shift) + 1
	}
	return freqs
}

func symbolBits(counts *[netcode.AlphabetSize]uint64, lengths [netcode.AlphabetSize]uint8) uint64 {
	var total uint64
	for symbol, n := range counts {
		total += n * uint64(lengths[symbol])
	}
	return total
}

func tailBits(values []uint32) uint64 {
	var total uint64
	for _, v := range values {
		total += uint64(netcode.BucketBits(netcode.BucketOf(v)))
	}
	return total
}

func gammaBits(values []uint32) uint64 {
	var total uint64
	for _, v := range values {
		total += uint64(netcode.GammaBitCost(v))
	}
	return total
}
