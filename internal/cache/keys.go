package cache

import (
	"context"
	"fmt"
)

// SuggestionKey builds the key of one cached suggestion list.
func SuggestionKey(userID, eventID string, filtersHash uint64) string {
	return fmt.Sprintf("suggestions:%s:%s:%016x", userID, eventID, filtersHash)
}

// SuggestionPattern matches every cached suggestion list requested by userID.
func SuggestionPattern(userID string) string {
	return fmt.Sprintf("suggestions:%s:*", userID)
}

// CandidateTag tags every cached list in which userID appears as a candidate.
func CandidateTag(userID string) string {
	return "candidate:" + userID
}

// InvalidateUsers drops cached suggestions requested by, or containing, any of userIDs.
func InvalidateUsers(ctx context.Context, c Cache, userIDs ...string) {
	if c == nil {
		return
	}
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		c.Invalidate(ctx, SuggestionPattern(id))
		c.InvalidateTag(ctx, CandidateTag(id))
	}
}
