package subscription

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const externalAccountIDDigits = 9

// newExternalAccountID derives a gateway account id candidate from the current
// time in milliseconds plus a three-digit random component, truncated to the
// last nine digits. Uniqueness is probabilistic only; the caller reserves the
// candidate through the unique column on enrollment_attempts and regenerates
// on collision.
func newExternalAccountID(now time.Time) int64 {
	s := strconv.FormatInt(now.UnixMilli(), 10) + strconv.Itoa(100+rand.IntN(900))
	if len(s) > externalAccountIDDigits {
		s = s[len(s)-externalAccountIDDigits:]
	}
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
