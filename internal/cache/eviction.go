package cache

import (
	"time"
)

// Eviction blends recency with inverse frequency. An entry that is recent
// but rarely reused can still lose to one that is slightly older but hot.
const (
	recencyWeight   = 0.7
	frequencyWeight = 0.3
)

// Score ranks an entry for eviction; the highest score is evicted first.
// age is measured since the entry's last access and normalized by ttl.
func Score(age time.Duration, hitCount uint64, ttl time.Duration) float64 {
	if ttl <= 0 {
		ttl = time.Nanosecond
	}
	return recencyWeight*(float64(age)/float64(ttl)) +
		frequencyWeight*(1/(float64(hitCount)+1))
}

// selectVictim returns the key of the worst-scoring entry. Ties go to the
// least recently accessed entry, then to the smaller key.
func selectVictim(entries map[string]*entry, now time.Time, ttl time.Duration) (string, bool) {
	var (
		victim    string
		victimE   *entry
		bestScore float64
	)

	for key, e := range entries {
		score := Score(now.Sub(e.lastAccess), e.hitCount, ttl)
		if victimE == nil || score > bestScore ||
			(score == bestScore && worseTie(key, e, victim, victimE)) {
			victim, victimE, bestScore = key, e, score
		}
	}
	return victim, victimE != nil
}

func worseTie(key string, e *entry, otherKey string, other *entry) bool {
	if !e.lastAccess.Equal(other.lastAccess) {
		return e.lastAccess.Before(other.lastAccess)
	}
	return key < otherKey
}
