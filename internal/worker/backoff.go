package worker

import "math"

const (
	// MaxRetries is the number of failed attempts after which a job is marked FAILED.
	MaxRetries = 8

	maxBackoffSeconds = 3600
)

// CalculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry to avoid overwhelming
// a struggling service, capped at one hour.
func CalculateBackoff(retryCount int) int32 {
	if retryCount < 0 {
		retryCount = 0
	}
	backoff := math.Pow(2, float64(retryCount)) * 10
	if backoff > maxBackoffSeconds {
		return maxBackoffSeconds
	}
	return int32(backoff)
}
