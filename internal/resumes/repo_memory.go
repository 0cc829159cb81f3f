package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	resumes  map[string]Resume
	analyses map[string]AnalysisRecord // keyed by resume id
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		resumes:  make(map[string]Resume),
		analyses: make(map[string]AnalysisRecord),
	}
}

func (r *MemoryRepo) CreateResume(ctx context.Context, resume Resume) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumes[resume.ID] = resume
	return nil
}

func (r *MemoryRepo) CreateAnalysis(ctx context.Context, record AnalysisRecord) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[record.ResumeID] = record
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]ResumeWithAnalysis, int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []ResumeWithAnalysis
	for _, resume := range r.resumes {
		if resume.UserID != userID {
			continue
		}
		if opts.BookmarkedOnly && !resume.IsBookmarked {
			continue
		}
		items = append(items, r.withAnalysisLocked(resume))
	}

	sort.Slice(items, func(i, j int) bool {
		switch opts.Sort {
		case SortOldest:
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		case SortScoreHigh:
			return overallScore(items[i]) > overallScore(items[j])
		case SortScoreLow:
			return overallScore(items[i]) < overallScore(items[j])
		default:
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
	})

	total := len(items)
	if opts.Offset >= total {
		return []ResumeWithAnalysis{}, total, nil
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items, total, nil
}

func overallScore(item ResumeWithAnalysis) int {
	if item.Analysis == nil {
		return 0
	}
	return item.Analysis.OverallScore
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, resumeID string) (ResumeWithAnalysis, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return ResumeWithAnalysis{}, ErrNotFound
	}
	return r.withAnalysisLocked(resume), nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID, resumeID string, update ResumeUpdate) (Resume, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return Resume{}, ErrNotFound
	}
	if update.Title != nil {
		resume.Title = *update.Title
	}
	if update.IsBookmarked != nil {
		resume.IsBookmarked = *update.IsBookmarked
	}
	resume.UpdatedAt = time.Now().UTC()
	r.resumes[resumeID] = resume
	return resume, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, resumeID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	delete(r.resumes, resumeID)
	delete(r.analyses, resumeID)
	return nil
}

func (r *MemoryRepo) SetShare(ctx context.Context, userID, resumeID, token string, expiresAt *time.Time, sharedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	resume.ShareToken = token
	resume.IsSharePublic = true
	resume.ShareExpiresAt = expiresAt
	resume.LastSharedAt = &sharedAt
	resume.UpdatedAt = sharedAt
	r.resumes[resumeID] = resume
	return nil
}

func (r *MemoryRepo) UpdateShare(ctx context.Context, userID, resumeID string, update ShareUpdate) (Resume, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return Resume{}, ErrNotFound
	}
	if update.IsPublic != nil {
		resume.IsSharePublic = *update.IsPublic
	}
	if update.ExpiresAt != nil {
		resume.ShareExpiresAt = *update.ExpiresAt
	}
	resume.UpdatedAt = time.Now().UTC()
	r.resumes[resumeID] = resume
	return resume, nil
}

func (r *MemoryRepo) ClearShare(ctx context.Context, userID, resumeID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	resume.ShareToken = ""
	resume.IsSharePublic = false
	resume.ShareExpiresAt = nil
	resume.UpdatedAt = time.Now().UTC()
	r.resumes[resumeID] = resume
	return nil
}

func (r *MemoryRepo) GetByShareToken(ctx context.Context, token string) (ResumeWithAnalysis, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, resume := range r.resumes {
		if resume.ShareToken != "" && resume.ShareToken == token {
			return r.withAnalysisLocked(resume), nil
		}
	}
	return ResumeWithAnalysis{}, ErrNotFound
}

func (r *MemoryRepo) IncrementShareViews(ctx context.Context, token string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, resume := range r.resumes {
		if resume.ShareToken != "" && resume.ShareToken == token {
			resume.ShareViewCount++
			r.resumes[id] = resume
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) withAnalysisLocked(resume Resume) ResumeWithAnalysis {
	item := ResumeWithAnalysis{Resume: resume}
	if record, ok := r.analyses[resume.ID]; ok {
		copied := record
		item.Analysis = &copied
	}
	return item
}

var _ Repo = (*MemoryRepo)(nil)
