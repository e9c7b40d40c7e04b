package redisx

import "time"

const (
	// Flag online/offline merchant: merchant:online:{merchant_id} -> "1" | "0"
	KeyMerchantOnline = "merchant:online:%s"

	// Dedup event dari bridge: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
