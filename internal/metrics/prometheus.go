// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the impact scoring service.
var (
	// Counters.
	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points credited to user ledgers",
		},
		[]string{"action_kind"},
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badge tiers granted",
		},
		[]string{"tier"},
	)

	TreeSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tree_submissions_total",
			Help: "Total tree-planting submission decisions",
		},
		[]string{"status"},
	)

	TreesPlantedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trees_planted_total",
			Help: "Total trees counted from approved submissions",
		},
	)

	ChallengeCompletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "challenge_completions_total",
			Help: "Total challenge completions rewarded",
		},
	)

	InnovationDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innovation_decisions_total",
			Help: "Total innovation review decisions",
		},
		[]string{"status"},
	)

	VotesCastTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_cast_total",
			Help: "Total vote toggles by outcome",
		},
		[]string{"outcome"},
	)

	// Gauges.
	CampaignProgressPercent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "campaign_progress_percent",
			Help: "Current progress percentage per campaign",
		},
		[]string{"campaign_id"},
	)

	ActiveChallengeParticipants = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_challenge_participants",
			Help: "Current number of participants per challenge",
		},
		[]string{"challenge_id"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"job", "status"},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken to execute scheduler jobs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
		[]string{"job"},
	)

	SchedulerLastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run per job",
		},
		[]string{"job"},
	)
)

// RecordPointsAwarded records a ledger credit.
func RecordPointsAwarded(actionKind string, delta int) {
	PointsAwardedTotal.WithLabelValues(actionKind).Add(float64(delta))
}

// RecordBadgeAwarded records a badge tier grant.
func RecordBadgeAwarded(tier string) {
	BadgesAwardedTotal.WithLabelValues(tier).Inc()
}

// RecordTreeSubmissionDecision records a tree submission decision.
func RecordTreeSubmissionDecision(status string, treeCount int) {
	TreeSubmissionsTotal.WithLabelValues(status).Inc()
	if status == "approved" {
		TreesPlantedTotal.Add(float64(treeCount))
	}
}

// RecordChallengeCompletion records a rewarded challenge completion.
func RecordChallengeCompletion() {
	ChallengeCompletionsTotal.Inc()
}

// RecordInnovationDecision records an innovation review decision.
func RecordInnovationDecision(status string) {
	InnovationDecisionsTotal.WithLabelValues(status).Inc()
}

// RecordVoteCast records a vote toggle outcome: cast, cleared or replaced.
func RecordVoteCast(outcome string) {
	VotesCastTotal.WithLabelValues(outcome).Inc()
}

// SetCampaignProgress sets the current progress percentage of a campaign.
func SetCampaignProgress(campaignID string, percent int) {
	CampaignProgressPercent.WithLabelValues(campaignID).Set(float64(percent))
}

// SetChallengeParticipants sets the current participant count of a challenge.
func SetChallengeParticipants(challengeID string, count int) {
	ActiveChallengeParticipants.WithLabelValues(challengeID).Set(float64(count))
}

// RecordSchedulerJob records a scheduler job execution.
func RecordSchedulerJob(job, status string, durationSeconds float64) {
	SchedulerJobsRunTotal.WithLabelValues(job, status).Inc()
	SchedulerJobDurationSeconds.WithLabelValues(job).Observe(durationSeconds)
}

// SetSchedulerLastRun sets the last run timestamp of a scheduler job.
func SetSchedulerLastRun(job string, unixTime float64) {
	SchedulerLastRunTimestamp.WithLabelValues(job).Set(unixTime)
}
