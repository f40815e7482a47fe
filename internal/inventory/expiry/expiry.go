// Package expiry classifies expiry dates relative to a reference date.
// Batch views, item alerts and the dashboard all go through Classify so they
// can never disagree about what "expiring soon" means.
package expiry

import "time"

// Classification of an expiry date.
const (
	Expired      = "expired"
	ExpiringSoon = "expiring_soon"
	Valid        = "valid"
)

// DefaultHorizonDays is the window used when no horizon is configured.
const DefaultHorizonDays = 30

// Classify buckets an expiry date against ref:
//
//	expiry < ref                  -> expired
//	ref <= expiry <= ref+horizon  -> expiring_soon
//	expiry > ref+horizon          -> valid
//
// A nil expiry date never expires and is valid by definition.
// A non-positive horizonDays falls back to DefaultHorizonDays.
func Classify(expiryDate *time.Time, ref time.Time, horizonDays int) string {
	if expiryDate == nil {
		return Valid
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	if expiryDate.Before(ref) {
		return Expired
	}
	if expiryDate.After(ref.AddDate(0, 0, horizonDays)) {
		return Valid
	}
	return ExpiringSoon
}
