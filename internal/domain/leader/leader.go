// Package leader selects a team leader from a finalized team.
package leader

import (
	"github.com/okian/teamforge/internal/domain/cost"
	"github.com/okian/teamforge/internal/domain/model"
)

// Select returns the member with the highest leadership aptitude under the
// policy, breaking ties by lowest participant ID. The aptitude formula is
// the same one the cost model optimizes, so the selected leader is the
// candidate the search was steering toward.
//
// Runs once per finalized team; the choice never feeds back into the search.
// Members must be non-empty and every ID must resolve through byID.
func Select(members []string, byID map[string]*model.Participant, policy cost.LeaderPolicy) string {
	leaderID := ""
	bestAptitude := 0.0
	for _, id := range members {
		p, ok := byID[id]
		if !ok {
			continue
		}
		aptitude := policy.Aptitude(p)
		switch {
		case leaderID == "":
			leaderID, bestAptitude = id, aptitude
		case aptitude > bestAptitude:
			leaderID, bestAptitude = id, aptitude
		case aptitude == bestAptitude && id < leaderID:
			leaderID = id
		}
	}
	return leaderID
}
