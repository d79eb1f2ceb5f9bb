// Package anneal implements the simulated-annealing partition search.
package anneal

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Default cooling schedule constants.
const (
	defaultInitialTemp   = 1.0
	defaultCoolingFactor = 0.995
	defaultStopTemp      = 1e-4
	defaultCoolEvery     = 1
	defaultMaxIterations = 10000

	// Automatic iteration cap used when MaxIterations is zero: scales with
	// the roster but stays bounded for very large inputs.
	autoCapPerParticipantSq = 40
	autoCapCeiling          = 200000

	// One in relocateDraw proposals migrates the remainder slack between
	// teams instead of swapping; only used when team sizes are uneven.
	relocateDraw = 8
)

// Schedule configures the cooling behavior of a search run.
// Zero fields are replaced with the documented defaults.
type Schedule struct {
	InitialTemp   float64 // starting temperature
	Cooling       float64 // geometric decay factor in (0,1)
	StopTemp      float64 // search stops when temperature falls below this
	CoolEvery     int     // iterations between temperature decays
	MaxIterations int     // hard iteration cap; 0 selects the automatic cap
}

// DefaultSchedule returns the documented default cooling schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		InitialTemp:   defaultInitialTemp,
		Cooling:       defaultCoolingFactor,
		StopTemp:      defaultStopTemp,
		CoolEvery:     defaultCoolEvery,
		MaxIterations: defaultMaxIterations,
	}
}

// normalized fills zero or out-of-range fields with defaults and resolves
// the automatic iteration cap for a roster of n participants.
func (s Schedule) normalized(n int) Schedule {
	if s.InitialTemp <= 0 {
		s.InitialTemp = defaultInitialTemp
	}
	if s.Cooling <= 0 || s.Cooling >= 1 {
		s.Cooling = defaultCoolingFactor
	}
	if s.StopTemp <= 0 {
		s.StopTemp = defaultStopTemp
	}
	if s.CoolEvery <= 0 {
		s.CoolEvery = defaultCoolEvery
	}
	if s.MaxIterations <= 0 {
		cap := autoCapPerParticipantSq * n * n
		if cap > autoCapCeiling {
			cap = autoCapCeiling
		}
		if cap < 1 {
			cap = 1
		}
		s.MaxIterations = cap
	}
	return s
}

// Objective scores an assignment (participant index -> team index).
// Implementations must be pure over a fixed roster.
type Objective interface {
	Cost(assign []int) float64
}

// Result is the outcome of one search run.
type Result struct {
	Assign      []int         // best assignment found
	Cost        float64       // cost of Assign; never above InitialCost
	InitialCost float64       // cost of the round-robin starting assignment
	Iterations  int           // iterations executed
	Accepted    int           // proposals accepted by the Metropolis criterion
	Improved    int           // times the tracked best was replaced
	FinalTemp   float64       // temperature when the search stopped
	Duration    time.Duration // wall time of the run
}

// Search partitions numParticipants participants into numTeams teams,
// minimizing obj. The initial assignment is deterministic round-robin
// (participant i joins team i mod numTeams), which front-loads any
// remainder onto the lowest-indexed teams. The number of teams is fixed
// for the whole run.
//
// The search is seeded and self-contained: identical inputs and seed give
// bit-identical results. ctx is checked between iterations; cancellation
// returns the best assignment found so far, never a mid-move state.
func Search(ctx context.Context, numParticipants, numTeams int, obj Objective, sched Schedule, seed int64) Result {
	start := time.Now()
	sched = sched.normalized(numParticipants)

	assign := make([]int, numParticipants)
	for i := range assign {
		assign[i] = i % numTeams
	}
	current := obj.Cost(assign)

	res := Result{
		Assign:      append([]int(nil), assign...),
		Cost:        current,
		InitialCost: current,
		FinalTemp:   sched.InitialTemp,
	}

	// A single team (or a single participant) has exactly one partition;
	// no move can change anything, so skip the loop.
	if numTeams <= 1 || numParticipants < 2 {
		res.Duration = time.Since(start)
		return res
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // explicit seed for reproducible search
	best := append([]int(nil), assign...)
	bestCost := current
	temp := sched.InitialTemp
	uneven := numParticipants%numTeams != 0

	iter := 0
	for temp > sched.StopTemp && iter < sched.MaxIterations {
		select {
		case <-ctx.Done():
			// Cooperative cancellation: the current state is always a
			// complete assignment, so best-so-far is safe to return.
			res.Assign = best
			res.Cost = bestCost
			res.Iterations = iter
			res.FinalTemp = temp
			res.Duration = time.Since(start)
			return res
		default:
		}
		iter++

		revert := proposeMove(rng, assign, numTeams, uneven)
		neighbor := obj.Cost(assign)
		delta := neighbor - current

		if delta <= 0 || rng.Float64() < math.Exp(-delta/temp) {
			current = neighbor
			res.Accepted++
			if current < bestCost {
				bestCost = current
				copy(best, assign)
				res.Improved++
			}
		} else {
			revert()
		}

		if iter%sched.CoolEvery == 0 {
			temp *= sched.Cooling
		}
	}

	res.Assign = best
	res.Cost = bestCost
	res.Iterations = iter
	res.FinalTemp = temp
	res.Duration = time.Since(start)
	return res
}

// proposeMove mutates assign in place with one local move and returns a
// closure that undoes it. The dominant move swaps the team assignments of
// two participants in different teams, preserving every team size. When
// sizes are uneven, an occasional relocate moves one member from a largest
// team to a smallest team, migrating the remainder slack.
func proposeMove(rng *rand.Rand, assign []int, numTeams int, uneven bool) func() {
	if uneven && rng.Intn(relocateDraw) == 0 {
		if undo, ok := relocate(rng, assign, numTeams); ok {
			return undo
		}
	}
	return swap(rng, assign)
}

// swap exchanges the teams of two participants in different teams.
func swap(rng *rand.Rand, assign []int) func() {
	i := rng.Intn(len(assign))
	j := rng.Intn(len(assign))
	for assign[j] == assign[i] {
		j = rng.Intn(len(assign))
	}
	assign[i], assign[j] = assign[j], assign[i]
	return func() { assign[i], assign[j] = assign[j], assign[i] }
}

// relocate moves a random member of a largest team onto a smallest team.
// Reports false when all teams are the same size and no relocation exists.
func relocate(rng *rand.Rand, assign []int, numTeams int) (func(), bool) {
	sizes := make([]int, numTeams)
	for _, t := range assign {
		sizes[t]++
	}
	large, small := 0, 0
	for t := 1; t < numTeams; t++ {
		if sizes[t] > sizes[large] {
			large = t
		}
		if sizes[t] < sizes[small] {
			small = t
		}
	}
	if sizes[large] == sizes[small] {
		return nil, false
	}

	// Pick a uniform member of the largest team.
	pick := rng.Intn(sizes[large])
	for i, t := range assign {
		if t != large {
			continue
		}
		if pick == 0 {
			assign[i] = small
			return func() { assign[i] = large }, true
		}
		pick--
	}
	return nil, false
}
