package settings

import "encoding/json"

// SyncQuotaUsage returns the serialized size in bytes counted against the
// sync quota, or -1 when the value cannot be serialized.
func SyncQuotaUsage(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return -1
	}
	return len(b)
}

// FitsInSyncQuota reports whether v serializes to fewer than SyncQuotaBytes
// bytes. Anything that cannot be serialized does not fit.
func FitsInSyncQuota(v any) bool {
	used := SyncQuotaUsage(v)
	return used >= 0 && used < SyncQuotaBytes
}
