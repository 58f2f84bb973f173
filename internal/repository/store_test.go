package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"talentflow_backend/internal/model"
	"talentflow_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepository(t *testing.T) *AssessmentRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewAssessmentRepository(db)
}

func storesUnderTest(t *testing.T) map[string]func(t *testing.T) AssessmentStore {
	return map[string]func(t *testing.T) AssessmentStore{
		"memory": func(t *testing.T) AssessmentStore { return NewMemoryAssessmentStore() },
		"gorm":   func(t *testing.T) AssessmentStore { return newSQLiteRepository(t) },
		"cached-unreachable-redis": func(t *testing.T) AssessmentStore {
			rdb := redis.NewClient(&redis.Options{
				Addr:        "127.0.0.1:1",
				DialTimeout: 50 * time.Millisecond,
				MaxRetries:  -1,
			})
			t.Cleanup(func() { rdb.Close() })
			return NewCachedAssessmentStore(NewMemoryAssessmentStore(), rdb, time.Minute)
		},
	}
}

func sampleAssessment(id, jobID string, created time.Time) *model.Assessment {
	return &model.Assessment{
		ID:        id,
		JobID:     jobID,
		Title:     "Assessment " + id,
		Status:    model.StatusActive,
		Version:   1,
		Settings:  model.DefaultSettings(),
		CreatedAt: created,
		UpdatedAt: created,
		Sections: []model.Section{{
			ID:    "sec-" + id,
			Title: "Only section",
			Questions: []model.Question{{
				ID:        "q-" + id,
				SectionID: "sec-" + id,
				Type:      model.SingleChoice,
				Title:     "Pick one",
				Points:    1,
				Options: []model.Option{
					{ID: "o1", Text: "A", Value: "a", IsCorrect: true},
					{ID: "o2", Text: "B", Value: "b"},
				},
			}},
		}},
	}
}

func sampleSubmission(assessmentID, candidateID string, attempt int, at time.Time) *model.Submission {
	return &model.Submission{
		ID:           model.GenerateUUID(),
		AssessmentID: assessmentID,
		CandidateID:  candidateID,
		Responses:    model.AnswerSet{"q-" + assessmentID: "a"},
		Score:        100,
		Passed:       true,
		StartedAt:    at.Add(-time.Minute),
		SubmittedAt:  at,
		TimeTaken:    60,
		Attempt:      attempt,
	}
}

func TestAssessmentStores(t *testing.T) {
	for name, newStore := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

			if _, err := store.LoadAssessment(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("LoadAssessment missing: err = %v, want ErrNotFound", err)
			}

			second := sampleAssessment("a2", "job-1", base.Add(time.Hour))
			first := sampleAssessment("a1", "job-1", base)
			other := sampleAssessment("a3", "job-2", base)
			for _, a := range []*model.Assessment{second, first, other} {
				if _, err := store.SaveAssessment(ctx, a); err != nil {
					t.Fatalf("SaveAssessment %s: %v", a.ID, err)
				}
			}

			got, err := store.LoadAssessment(ctx, "a1")
			if err != nil {
				t.Fatalf("LoadAssessment: %v", err)
			}
			if got.Title != first.Title || len(got.Sections) != 1 || !got.Sections[0].Questions[0].Options[0].IsCorrect {
				t.Fatalf("round trip lost data: %+v", got)
			}

			byJob, err := store.LoadAssessmentsByJob(ctx, "job-1")
			if err != nil {
				t.Fatalf("LoadAssessmentsByJob: %v", err)
			}
			if len(byJob) != 2 || byJob[0].ID != "a1" || byJob[1].ID != "a2" {
				t.Fatalf("byJob = %v", ids(byJob))
			}

			first.Title = "Renamed"
			first.Version = 2
			if _, err := store.SaveAssessment(ctx, first); err != nil {
				t.Fatalf("SaveAssessment replace: %v", err)
			}
			got, _ = store.LoadAssessment(ctx, "a1")
			if got.Title != "Renamed" || got.Version != 2 {
				t.Fatalf("replace not applied: %+v", got)
			}

			for attempt := 1; attempt <= 2; attempt++ {
				if _, err := store.SaveSubmission(ctx, sampleSubmission("a1", "cand", attempt, base.Add(time.Duration(attempt)*time.Minute))); err != nil {
					t.Fatalf("SaveSubmission: %v", err)
				}
			}
			if _, err := store.SaveSubmission(ctx, sampleSubmission("a1", "other", 1, base)); err != nil {
				t.Fatalf("SaveSubmission: %v", err)
			}
			if _, err := store.SaveSubmission(ctx, sampleSubmission("a1", "cand", 2, base)); !errors.Is(err, ErrDuplicateAttempt) {
				t.Fatalf("duplicate attempt: err = %v, want ErrDuplicateAttempt", err)
			}

			latest, err := store.LoadSubmission(ctx, "a1", "cand")
			if err != nil {
				t.Fatalf("LoadSubmission: %v", err)
			}
			if latest.Attempt != 2 {
				t.Fatalf("latest attempt = %d, want 2", latest.Attempt)
			}
			if latest.Responses["q-a1"] != "a" {
				t.Fatalf("responses lost: %+v", latest.Responses)
			}

			history, err := store.ListCandidateSubmissions(ctx, "a1", "cand")
			if err != nil || len(history) != 2 || history[0].Attempt != 1 {
				t.Fatalf("history = %+v, err = %v", history, err)
			}

			all, err := store.ListSubmissions(ctx, "a1")
			if err != nil || len(all) != 3 {
				t.Fatalf("ListSubmissions = %d, err = %v", len(all), err)
			}
			if all[0].CandidateID != "other" {
				t.Fatalf("submissions should be ordered by submittedAt")
			}

			if _, err := store.LoadSubmission(ctx, "a1", "nobody"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("LoadSubmission missing: err = %v", err)
			}

			if err := store.DeleteAssessment(ctx, "a1"); err != nil {
				t.Fatalf("DeleteAssessment: %v", err)
			}
			if _, err := store.LoadAssessment(ctx, "a1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("deleted assessment still loads: %v", err)
			}
			if subs, _ := store.ListSubmissions(ctx, "a1"); len(subs) != 0 {
				t.Fatalf("delete should cascade to submissions, %d left", len(subs))
			}
			if err := store.DeleteAssessment(ctx, "a1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("second delete: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAssessmentStore()
	a := sampleAssessment("a1", "job", time.Now())
	store.SaveAssessment(ctx, a)

	a.Sections[0].Title = "mutated after save"
	got, _ := store.LoadAssessment(ctx, "a1")
	if got.Sections[0].Title == "mutated after save" {
		t.Fatalf("store aliased caller data")
	}
	got.Sections[0].Questions[0].Title = "mutated after load"
	again, _ := store.LoadAssessment(ctx, "a1")
	if again.Sections[0].Questions[0].Title == "mutated after load" {
		t.Fatalf("store returned shared data")
	}
}

func ids(list []*model.Assessment) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}
