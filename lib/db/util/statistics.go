package util

import (
	"fmt"
	"math"
	"sort"
)

// ----------------------------------------------------------------------------
// Summary statistics
// ----------------------------------------------------------------------------

// Stats summarizes a set of values, e.g. the fill level of all segments of a log
type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes the summary of values using the population standard deviation.
// An empty input yields the zero value, a maximum of 0 yields a MinMaxRatio of 1.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	s := Stats{Min: values[0], Max: values[0], MinMaxRatio: 1}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))

	var squared float64
	for _, v := range values {
		squared += (v - s.Mean) * (v - s.Mean)
	}
	s.StdDeviation = math.Sqrt(squared / float64(len(values)))

	if s.Max > 0 {
		s.MinMaxRatio = s.Min / s.Max
	}
	return s
}

// DistributionStats describes how evenly work is spread across partitions
type DistributionStats struct {
	Stats
	// DistributionQuality is 1 for a perfectly even spread and approaches 0 the more
	// the load concentrates on few partitions
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats rates the spread of counts over partitions.
// The quality is the mean of (1 - coefficient of variation, capped at 1) and the min/max ratio.
func NewDistributionStats(counts []float64) DistributionStats {
	stats := NewStats(counts)

	var cv float64
	if stats.Mean > 0 {
		cv = stats.StdDeviation / stats.Mean
	}

	return DistributionStats{
		Stats:               stats,
		DistributionQuality: (1.0-math.Min(1.0, cv))*0.5 + stats.MinMaxRatio*0.5,
	}
}

// ----------------------------------------------------------------------------
// SizeHistogram
// ----------------------------------------------------------------------------

// firstBucketBytes is the upper bound of the smallest histogram bucket
const firstBucketBytes = 16

// SizeHistogram tracks the distribution of sizes up to a known maximum, e.g. the
// encoded size of records in a log. Buckets double in size starting at 16 bytes, the
// last bucket ends at the maximum. Estimates never exceed the largest observed sample.
//
// Thread-safety: not thread-safe, a histogram belongs to the goroutine that owns the log.
type SizeHistogram struct {
	boundaries []int   // inclusive upper bound of every bucket, ascending
	buckets    []int64 // samples per bucket
	count      int64
	sum        int64
	max        int // largest sample seen
}

// NewSizeHistogram creates a histogram for sizes in [0, maxSize]. Panics if maxSize <= 0.
func NewSizeHistogram(maxSize int) *SizeHistogram {
	if maxSize <= 0 {
		panic(fmt.Sprintf("util: histogram maximum must be positive, got %d", maxSize))
	}

	var boundaries []int
	for b := firstBucketBytes; 2*b <= maxSize; b *= 2 {
		boundaries = append(boundaries, b)
	}
	boundaries = append(boundaries, maxSize)

	return &SizeHistogram{
		boundaries: boundaries,
		buckets:    make([]int64, len(boundaries)),
	}
}

// AddSample records a size. Panics if size is outside [0, maxSize].
func (h *SizeHistogram) AddSample(size int) {
	if size < 0 || size > h.boundaries[len(h.boundaries)-1] {
		panic(fmt.Sprintf("util: sample %d outside histogram range [0, %d]", size, h.boundaries[len(h.boundaries)-1]))
	}

	h.buckets[sort.SearchInts(h.boundaries, size)]++
	h.count++
	h.sum += int64(size)
	if size > h.max {
		h.max = size
	}
}

// GetCount returns the total number of samples
func (h *SizeHistogram) GetCount() int64 {
	return h.count
}

// AverageSize returns the exact average of all samples
func (h *SizeHistogram) AverageSize() int {
	if h.count == 0 {
		return 0
	}
	return int(h.sum / h.count)
}

// MedianEstimate estimates the median size
func (h *SizeHistogram) MedianEstimate() int {
	return h.GetPercentileEstimate(50)
}

// GetPercentileEstimate estimates the given percentile (0-100) as the middle of the
// bucket holding it, capped at the largest sample. Returns 0 without samples or for
// a percentile outside [0, 100].
func (h *SizeHistogram) GetPercentileEstimate(percentile int) int {
	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	if target == 0 {
		target = 1
	}

	var cumulative int64
	for i, n := range h.buckets {
		cumulative += n
		if cumulative < target {
			continue
		}
		lower := 0
		if i > 0 {
			lower = h.boundaries[i-1]
		}
		return min((lower+h.boundaries[i])/2, h.max)
	}
	return h.max
}
