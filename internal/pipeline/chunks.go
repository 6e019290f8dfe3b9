package pipeline

import "podscribe/internal/blob"

// PlanChunks splits a blob of the given size into contiguous,
// non-overlapping byte ranges of at most chunkSize bytes, covering the
// whole blob. Chunks are transcribed strictly one at a time: keeping a
// single chunk in memory is what bounds the process's peak usage
// regardless of episode length.
func PlanChunks(size, chunkSize int64) []blob.ByteRange {
	if size <= 0 || chunkSize <= 0 {
		return nil
	}
	ranges := make([]blob.ByteRange, 0, (size+chunkSize-1)/chunkSize)
	for start := int64(0); start < size; start += chunkSize {
		end := start + chunkSize
		if end > size {
			end = size
		}
		ranges = append(ranges, blob.ByteRange{Start: start, End: end})
	}
	return ranges
}
