package storage

import (
	"sort"
	"sync"

	"github.com/dharmalab/dilaget/internal/models"
)

// JobStore is the in-memory record of serve-mode downloads.
type JobStore struct {
	jobs map[string]*models.DownloadJob
	mu   sync.RWMutex
}

func New() *JobStore {
	return &JobStore{
		jobs: make(map[string]*models.DownloadJob),
	}
}

func (s *JobStore) Get(jobID string) (*models.DownloadJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	return job, exists
}

func (s *JobStore) Set(jobID string, job *models.DownloadJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = job
}

// GetAll returns the jobs newest first.
func (s *JobStore) GetAll() []*models.DownloadJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.DownloadJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, job)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *JobStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}
