package out

import (
	"fmt"

	apperrors "demoprep/internal/platform/errors"
)

// DefaultQuotaBytes matches the usual per-origin browser storage allowance.
const DefaultQuotaBytes int64 = 5 * 1024 * 1024

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// checkQuota reports ErrQuotaExceeded when writing key=value on top of the
// other entries (usedExcludingKey) would pass quota. A quota <= 0 is unlimited.
func checkQuota(quota, usedExcludingKey int64, key, value string) error {
	if quota <= 0 {
		return nil
	}
	need := usedExcludingKey + entrySize(key, value)
	if need > quota {
		return fmt.Errorf("%w: write of %q needs %d of %d bytes", apperrors.ErrQuotaExceeded, key, need, quota)
	}
	return nil
}
