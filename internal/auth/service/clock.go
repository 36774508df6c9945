package service

import "time"

// nowUTC is the clock every expiry comparison uses: UTC at second precision,
// so the application clock and the store never disagree about sub-second
// drift or timezone.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
