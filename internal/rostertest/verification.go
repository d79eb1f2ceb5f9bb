package rostertest

import (
	"fmt"
	"sort"

	"github.com/okian/teamforge/internal/printer"
)

// verifyResult checks the completed job against the formation guarantees:
// every participant placed exactly once, balanced front-loaded team sizes,
// leaders drawn from their teams, and per-team role coverage.
func verifyResult(config *Config, roster []Participant, job *JobResponse) error {
	printer.Step("Verifying formation result...\n")

	if job.Result == nil {
		return fmt.Errorf("completed job carries no result")
	}
	res := job.Result

	if err := verifyCompleteness(roster, res); err != nil {
		return err
	}
	printer.Success("All %d participants placed exactly once\n", len(roster))

	if err := verifySizePolicy(len(roster), config.TeamSize, res); err != nil {
		return err
	}
	printer.Success("Team sizes follow the balanced front-loaded policy\n")

	if err := verifyLeaders(res); err != nil {
		return err
	}
	printer.Success("Every team leader is a member of its team\n")

	if len(config.RequiredRoles) > 0 {
		if err := verifyRoleCoverage(config.RequiredRoles, roster, res); err != nil {
			return err
		}
		printer.Success("Required roles covered on every team\n")
	}

	return nil
}

// verifyCompleteness checks that the result is an exact partition of the roster.
func verifyCompleteness(roster []Participant, res *FormationResult) error {
	known := make(map[string]bool, len(roster))
	for i := range roster {
		known[roster[i].ID] = true
	}

	placed := make(map[string]int)
	for _, team := range res.Teams {
		for _, id := range team.Members {
			if !known[id] {
				return fmt.Errorf("team %d contains unknown participant %s", team.Index, id)
			}
			placed[id]++
		}
	}

	if len(placed) != len(roster) {
		return fmt.Errorf("placed %d participants, roster has %d", len(placed), len(roster))
	}
	for id, count := range placed {
		if count != 1 {
			return fmt.Errorf("participant %s placed %d times", id, count)
		}
	}
	return nil
}

// verifySizePolicy checks team count and the front-loaded size distribution.
func verifySizePolicy(numParticipants, teamSize int, res *FormationResult) error {
	wantTeams := (numParticipants + teamSize - 1) / teamSize
	if res.NumTeams != wantTeams {
		return fmt.Errorf("expected %d teams, got %d", wantTeams, res.NumTeams)
	}
	if len(res.Teams) != wantTeams {
		return fmt.Errorf("result lists %d teams, header says %d", len(res.Teams), wantTeams)
	}

	base := numParticipants / wantTeams
	extras := numParticipants % wantTeams

	sizes := make([]int, len(res.Teams))
	for i, team := range res.Teams {
		sizes[i] = len(team.Members)
	}
	if !sort.SliceIsSorted(sizes, func(a, b int) bool { return sizes[a] > sizes[b] }) {
		return fmt.Errorf("team sizes not front-loaded: %v", sizes)
	}
	for i, size := range sizes {
		want := base
		if i < extras {
			want = base + 1
		}
		if size != want {
			return fmt.Errorf("team %d has %d members, want %d", i, size, want)
		}
	}
	return nil
}

// verifyLeaders checks that each leader belongs to its team.
func verifyLeaders(res *FormationResult) error {
	for _, team := range res.Teams {
		if team.LeaderID == "" {
			return fmt.Errorf("team %d has no leader", team.Index)
		}
		found := false
		for _, id := range team.Members {
			if id == team.LeaderID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("team %d leader %s is not a member", team.Index, team.LeaderID)
		}
	}
	return nil
}

// verifyRoleCoverage checks the per-team minimum role counts.
func verifyRoleCoverage(required map[string]int, roster []Participant, res *FormationResult) error {
	rolesByID := make(map[string][]string, len(roster))
	for i := range roster {
		rolesByID[roster[i].ID] = roster[i].Roles
	}

	for _, team := range res.Teams {
		holders := make(map[string]int)
		for _, id := range team.Members {
			for _, role := range rolesByID[id] {
				holders[role]++
			}
		}
		for role, count := range required {
			if holders[role] < count {
				return fmt.Errorf("team %d covers role %q %d times, need %d",
					team.Index, role, holders[role], count)
			}
		}
	}
	return nil
}
