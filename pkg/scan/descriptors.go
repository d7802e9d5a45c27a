package scan

// Constants mirror the original implementation's batch-size inference:
// a soft NOFILE limit below the average batch size gets halved for
// headroom, an implausibly generous one is capped at the average, and
// anything in between just loses 100 descriptors for stdio and friends.
const (
	averageBatchSize    = 3000
	defaultDescriptorCap = 8000
)

// ClampBatchSize lowers batchSize to a safe function of the process's
// soft file-descriptor limit. It never raises batchSize; raising the
// underlying limit is pkg/ulimit's job, called before this.
func ClampBatchSize(batchSize int, softLimit uint64) int {
	limit := int(softLimit)
	if limit >= batchSize {
		return batchSize
	}

	switch {
	case limit < averageBatchSize:
		return limit / 2
	case limit > defaultDescriptorCap:
		return averageBatchSize
	default:
		return limit - 100
	}
}
