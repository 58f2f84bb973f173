package repository

import (
	"context"
	"sort"
	"sync"

	"talentflow_backend/internal/model"
)

// MemoryAssessmentStore keeps everything in process. Used for tests and for
// running the service without a database.
type MemoryAssessmentStore struct {
	mu          sync.RWMutex
	assessments map[string]*model.Assessment
	order       map[string]int // insertion sequence, tie-breaker for created_at
	seq         int
	submissions map[string][]model.Submission // by assessment id, append-only
}

func NewMemoryAssessmentStore() *MemoryAssessmentStore {
	return &MemoryAssessmentStore{
		assessments: make(map[string]*model.Assessment),
		order:       make(map[string]int),
		submissions: make(map[string][]model.Submission),
	}
}

var _ AssessmentStore = (*MemoryAssessmentStore)(nil)

func (m *MemoryAssessmentStore) LoadAssessment(_ context.Context, id string) (*model.Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assessments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (m *MemoryAssessmentStore) LoadAssessmentsByJob(_ context.Context, jobID string) ([]*model.Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Assessment
	for _, a := range m.assessments {
		if a.JobID == jobID {
			out = append(out, a.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return m.order[out[i].ID] < m.order[out[j].ID]
	})
	return out, nil
}

func (m *MemoryAssessmentStore) SaveAssessment(_ context.Context, a *model.Assessment) (*model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.order[a.ID]; !ok {
		m.seq++
		m.order[a.ID] = m.seq
	}
	m.assessments[a.ID] = a.Clone()
	return a.Clone(), nil
}

func (m *MemoryAssessmentStore) DeleteAssessment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[id]; !ok {
		return ErrNotFound
	}
	delete(m.assessments, id)
	delete(m.order, id)
	delete(m.submissions, id)
	return nil
}

func (m *MemoryAssessmentStore) LoadSubmission(_ context.Context, assessmentID, candidateID string) (*model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Submission
	for i, s := range m.submissions[assessmentID] {
		if s.CandidateID != candidateID {
			continue
		}
		if latest == nil || s.Attempt > latest.Attempt {
			latest = &m.submissions[assessmentID][i]
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	out := copySubmission(*latest)
	return &out, nil
}

func (m *MemoryAssessmentStore) ListCandidateSubmissions(_ context.Context, assessmentID, candidateID string) ([]model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Submission
	for _, s := range m.submissions[assessmentID] {
		if s.CandidateID == candidateID {
			out = append(out, copySubmission(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Attempt < out[j].Attempt })
	return out, nil
}

func (m *MemoryAssessmentStore) SaveSubmission(_ context.Context, s *model.Submission) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.submissions[s.AssessmentID] {
		if existing.CandidateID == s.CandidateID && existing.Attempt == s.Attempt {
			return nil, ErrDuplicateAttempt
		}
	}
	stored := copySubmission(*s)
	if stored.ID == "" {
		stored.ID = model.GenerateUUID()
	}
	m.submissions[s.AssessmentID] = append(m.submissions[s.AssessmentID], stored)
	out := copySubmission(stored)
	return &out, nil
}

func (m *MemoryAssessmentStore) ListSubmissions(_ context.Context, assessmentID string) ([]model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	subs := m.submissions[assessmentID]
	out := make([]model.Submission, 0, len(subs))
	for _, s := range subs {
		out = append(out, copySubmission(s))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func copySubmission(s model.Submission) model.Submission {
	s.Responses = s.Responses.Clone()
	if s.Snapshot != nil {
		s.Snapshot = append([]byte(nil), s.Snapshot...)
	}
	return s
}
