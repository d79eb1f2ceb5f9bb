package rostertest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/teamforge/internal/printer"
	"github.com/okian/teamforge/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	rosterFilePermission = 0600
)

// Run executes the complete roster test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting teamforge roster test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("participants", config.NumParticipants),
		logger.Int("teamSize", config.TeamSize),
		logger.Int64("seed", config.Seed),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the roster
	roster, err := generateRoster(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("roster generation failed: %w", err)
	}

	// Step 3: Submit the formation job
	printer.Step("Submitting formation job for %d participants...\n", len(roster))
	jobID, err := submitFormation(ctx, client, config, roster, stats)
	if err != nil {
		return fmt.Errorf("job submission failed: %w", err)
	}

	// Step 4: Poll until the job reaches a terminal state
	printer.Step("Waiting for job %s to finish...\n", jobID)
	job, err := pollJob(ctx, client, config, jobID, stats)
	if err != nil {
		return fmt.Errorf("job polling failed: %w", err)
	}

	if job.Status != "completed" {
		printer.Warning("Job finished as %s: %s\n", job.Status, job.Error)
		return fmt.Errorf("job %s finished as %s: %s", jobID, job.Status, job.Error)
	}

	// Step 5: Verify the result
	if err := verifyResult(config, roster, job); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.TeamsFormed = job.Result.NumTeams
	stats.FinalCost = job.Result.Cost
	stats.InitialCost = job.Result.InitialCost
	stats.Iterations = job.Result.Iterations

	displayTeams(job, config.Verbose)

	// Step 6: Save the roster to file
	if err := saveRosterToFile(ctx, config, roster); err != nil {
		logger.Get().Warn(ctx, "failed to save roster to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayTeams prints the formed teams with their summaries.
func displayTeams(job *JobResponse, verbose bool) {
	res := job.Result
	printer.Success("Formed %d teams (cost %.4f, down from %.4f in %d iterations)\n",
		res.NumTeams, res.Cost, res.InitialCost, res.Iterations)

	for i, team := range res.Teams {
		printer.Printf("  Team %d: %d members, leader %s\n", team.Index, len(team.Members), team.LeaderID)
		if verbose && i < len(res.Summaries) {
			sum := res.Summaries[i]
			printer.Printf("    avg composite %.3f, leader aptitude %.2f\n", sum.AvgComposite, sum.LeaderAptitude)
			for role, count := range sum.CoveredRoles {
				printer.Printf("    role %s: %d\n", role, count)
			}
		}
	}
}

// saveRosterToFile saves the generated roster to a JSON file.
func saveRosterToFile(ctx context.Context, config *Config, roster []Participant) error {
	if len(roster) == 0 {
		return fmt.Errorf("no roster to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_roster_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(roster, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	if err := os.WriteFile(filename, data, rosterFilePermission); err != nil {
		return fmt.Errorf("failed to write roster file: %w", err)
	}

	logger.Get().Info(ctx, "roster saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var improvement float64
	if stats.InitialCost > 0 {
		improvement = (stats.InitialCost - stats.FinalCost) / stats.InitialCost * PercentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("participantsGenerated", stats.ParticipantsGenerated),
		logger.Int("jobsSubmitted", stats.JobsSubmitted),
		logger.Int("polls", stats.Polls),
		logger.Int("teamsFormed", stats.TeamsFormed),
		logger.Float64("initialCost", stats.InitialCost),
		logger.Float64("finalCost", stats.FinalCost),
		logger.Float64("improvementPct", improvement),
		logger.Int("iterations", stats.Iterations),
		logger.String("duration", stats.Duration.String()))
}
