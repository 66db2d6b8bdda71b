// Command seed_sessions posts synthetic completed sessions to a running
// API instance. Useful for smoke-testing the ingest pipeline and for
// populating a development database with enough history to exercise the
// aggregate rules.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

type sessionPayload struct {
	TutorID               string     `json:"tutor_id"`
	StudentID             string     `json:"student_id"`
	ScheduledStart        time.Time  `json:"scheduled_start"`
	ScheduledEnd          time.Time  `json:"scheduled_end"`
	TutorJoinTime         *time.Time `json:"tutor_join_time,omitempty"`
	TutorLeaveTime        *time.Time `json:"tutor_leave_time,omitempty"`
	IsFirstSession        bool       `json:"is_first_session"`
	WasRescheduled        bool       `json:"was_rescheduled"`
	RescheduledBy         string     `json:"rescheduled_by,omitempty"`
	StudentFeedbackRating *int       `json:"student_feedback_rating,omitempty"`
}

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "API base URL")
		token      = flag.String("token", "", "bearer token with SERVICE or ADMIN role")
		tutorID    = flag.String("tutor", "tutor-demo", "tutor ID to seed sessions for")
		count      = flag.Int("count", 30, "number of sessions to create")
		noShowPct  = flag.Float64("no-show", 0.05, "fraction of sessions seeded as no-shows")
		latePct    = flag.Float64("late", 0.2, "fraction of sessions seeded as late joins")
		reschedPct = flag.Float64("resched", 0.1, "fraction of sessions seeded as tutor reschedules")
		seed       = flag.Int64("seed", 0, "random seed (0 uses current time)")
	)
	flag.Parse()

	if *token == "" {
		log.Fatal("-token is required")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	client := &http.Client{Timeout: 10 * time.Second}
	endpoint := fmt.Sprintf("%s/api/v1/sessions", *baseURL)

	created := 0
	for i := 0; i < *count; i++ {
		payload := buildSession(rng, *tutorID, i, *count, *noShowPct, *latePct, *reschedPct)
		if err := post(client, endpoint, *token, payload); err != nil {
			log.Printf("session %d failed: %v", i, err)
			continue
		}
		created++
	}

	log.Printf("seeded %d/%d sessions for tutor %s (seed %d)", created, *count, *tutorID, *seed)
}

func buildSession(rng *rand.Rand, tutorID string, index, total int, noShowPct, latePct, reschedPct float64) sessionPayload {
	// Spread sessions evenly over the last 30 days.
	daysBack := float64(index) / float64(total) * 30
	start := time.Now().UTC().Add(-time.Duration(daysBack*24) * time.Hour).Truncate(time.Minute)
	end := start.Add(time.Hour)

	payload := sessionPayload{
		TutorID:        tutorID,
		StudentID:      fmt.Sprintf("student-%d", rng.Intn(8)+1),
		ScheduledStart: start,
		ScheduledEnd:   end,
		IsFirstSession: index == total-1,
	}

	roll := rng.Float64()
	switch {
	case roll < noShowPct:
		// No join time: a tutor no-show.
	case roll < noShowPct+latePct:
		join := start.Add(time.Duration(6+rng.Intn(15)) * time.Minute)
		leave := end
		payload.TutorJoinTime = &join
		payload.TutorLeaveTime = &leave
	default:
		join := start.Add(-time.Duration(rng.Intn(3)) * time.Minute)
		leave := end
		payload.TutorJoinTime = &join
		payload.TutorLeaveTime = &leave
	}

	if payload.TutorJoinTime != nil {
		rating := 3 + rng.Intn(3)
		payload.StudentFeedbackRating = &rating
	}

	if rng.Float64() < reschedPct {
		payload.WasRescheduled = true
		payload.RescheduledBy = "tutor"
	}

	return payload
}

func post(client *http.Client, endpoint, token string, payload sessionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
