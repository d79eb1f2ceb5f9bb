package rostertest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/teamforge/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Score dimension names submitted on the wire.
var dimensionNames = []string{
	"hackathon_score",
	"projects_completed",
	"github_contributions",
	"experience_level",
	"problem_solving",
	"innovation_index",
}

// archetype shapes the score and role distribution of generated participants.
type archetype struct {
	name       string
	roles      []string
	scoreMin   float64
	scoreRange float64
	leaderMin  float64
	leaderMax  float64
}

// Archetypes cycle through the roster so every role tag appears with a
// predictable frequency, keeping generated jobs feasible for modest
// per-team role requirements.
var archetypes = []archetype{
	{name: "backend", roles: []string{"backend"}, scoreMin: 5.0, scoreRange: 4.0, leaderMin: 2.0, leaderMax: 6.0},
	{name: "frontend", roles: []string{"frontend"}, scoreMin: 4.0, scoreRange: 4.0, leaderMin: 1.0, leaderMax: 5.0},
	{name: "ml", roles: []string{"ml", "backend"}, scoreMin: 6.0, scoreRange: 3.5, leaderMin: 2.0, leaderMax: 7.0},
	{name: "design", roles: []string{"design", "frontend"}, scoreMin: 3.0, scoreRange: 5.0, leaderMin: 1.0, leaderMax: 5.0},
	{name: "lead", roles: []string{"backend", "product"}, scoreMin: 5.0, scoreRange: 4.5, leaderMin: 6.0, leaderMax: 10.0},
	{name: "generalist", roles: []string{"backend", "frontend", "design"}, scoreMin: 2.0, scoreRange: 6.0, leaderMin: 3.0, leaderMax: 8.0},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateRoster creates the configured number of participants with unique IDs.
func generateRoster(ctx context.Context, config *Config, stats *Stats) ([]Participant, error) {
	logger.Get().Info(ctx, "generating roster with unique participant IDs",
		logger.Int("numParticipants", config.NumParticipants))

	roster := make([]Participant, config.NumParticipants)
	for i := 0; i < config.NumParticipants; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during roster generation: %w", ctx.Err())
		default:
		}
		roster[i] = generateParticipant(i)
	}

	stats.ParticipantsGenerated = len(roster)
	logger.Get().Info(ctx, "generated roster successfully", logger.Int("count", len(roster)))

	return roster, nil
}

// generateParticipant creates a single participant from the archetype cycle.
func generateParticipant(index int) Participant {
	a := archetypes[index%len(archetypes)]

	scores := make(map[string]float64, len(dimensionNames))
	for _, name := range dimensionNames {
		scores[name] = a.scoreMin + getRandomFloat()*a.scoreRange
	}

	return Participant{
		ID:         uuid.New().String(),
		Name:       fmt.Sprintf("%s-%03d", a.name, index),
		Scores:     scores,
		Roles:      a.roles,
		Leadership: a.leaderMin + getRandomFloat()*(a.leaderMax-a.leaderMin),
	}
}
