package constants

import (
	"fmt"
	"time"
)

// Redis key map for the whole application.
// Pattern: tourly:{module}:{operation}:{identifier}

const CACHE_PREFIX = "tourly"

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG  = 24 * time.Hour   // very stable data
	TTL_STATIC_SHORT = 6 * time.Hour    // user profiles
	TTL_SEMI_STATIC  = 1 * time.Hour    // tour listings
	TTL_DYNAMIC      = 5 * time.Minute  // tour detail with seat counter
	TTL_REALTIME     = 30 * time.Second // live availability checks
)

// ================== TOURS MODULE ==================

const (
	CACHE_KEY_TOURS_LIST  = CACHE_PREFIX + ":tours:list"         // + :status:X
	CACHE_KEY_TOUR_DETAIL = CACHE_PREFIX + ":tours:detail:uuid:" // + tour-id
)

const (
	TTL_TOURS_LIST  = TTL_SEMI_STATIC
	TTL_TOUR_DETAIL = TTL_DYNAMIC
)

// ================== AVAILABILITY MODULE ==================

const (
	CACHE_KEY_SEATS_REMAINING = CACHE_PREFIX + ":availability:remaining:" // + tour-id:date
)

const TTL_SEATS_REMAINING = TTL_REALTIME

// ================== WIZARD / HOLDS ==================

// These are state keys, not cache keys: their TTLs come from config, and
// they are written through Lua scripts, never by the cache layer.
const (
	KEY_WIZARD_SESSION = CACHE_PREFIX + ":wizard:session:user:" // + user-id
	KEY_LEAD_HOLD      = CACHE_PREFIX + ":holds:lead:user:"     // + user-id
)

// ================== AUTH MODULE ==================

const (
	CACHE_KEY_USER_PROFILE = CACHE_PREFIX + ":auth:user:profile:uuid:" // + user-id
)

const TTL_USER_PROFILE = TTL_STATIC_SHORT

// ================== INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_TOURS_ALL = CACHE_PREFIX + ":tours:*"
	PATTERN_INVALIDATE_USER_ALL  = CACHE_PREFIX + ":*:user:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildTourDetailKey(tourID string) string {
	return CACHE_KEY_TOUR_DETAIL + tourID
}

func BuildToursListKey(status string) string {
	if status != "" {
		return CACHE_KEY_TOURS_LIST + ":status:" + status
	}
	return CACHE_KEY_TOURS_LIST
}

func BuildSeatsRemainingKey(tourID, date string) string {
	return fmt.Sprintf("%s%s:%s", CACHE_KEY_SEATS_REMAINING, tourID, date)
}

func BuildWizardSessionKey(userID string) string {
	return KEY_WIZARD_SESSION + userID
}

func BuildLeadHoldKey(userID string) string {
	return KEY_LEAD_HOLD + userID
}
