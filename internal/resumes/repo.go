package resumes

import (
	"context"
	"time"
)

// Sort options for the history list.
const (
	SortLatest    = "latest"
	SortOldest    = "oldest"
	SortScoreHigh = "score_high"
	SortScoreLow  = "score_low"
)

// ListOptions filters and pages the history list.
type ListOptions struct {
	Sort           string
	BookmarkedOnly bool
	Limit          int
	Offset         int
}

// ResumeUpdate carries the PATCHable metadata fields; nil means unchanged.
type ResumeUpdate struct {
	Title        *string
	IsBookmarked *bool
}

// ShareUpdate changes sharing settings; nil means unchanged.
type ShareUpdate struct {
	IsPublic  *bool
	ExpiresAt **time.Time
}

// Repo stores resumes and their analysis rows. Every owner-scoped operation
// carries the user id predicate down into the query, not just at the API
// boundary.
type Repo interface {
	CreateResume(ctx context.Context, resume Resume) error
	CreateAnalysis(ctx context.Context, record AnalysisRecord) error
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]ResumeWithAnalysis, int, error)
	GetByID(ctx context.Context, userID, resumeID string) (ResumeWithAnalysis, error)
	Update(ctx context.Context, userID, resumeID string, update ResumeUpdate) (Resume, error)
	Delete(ctx context.Context, userID, resumeID string) error

	SetShare(ctx context.Context, userID, resumeID, token string, expiresAt *time.Time, sharedAt time.Time) error
	UpdateShare(ctx context.Context, userID, resumeID string, update ShareUpdate) (Resume, error)
	ClearShare(ctx context.Context, userID, resumeID string) error
	GetByShareToken(ctx context.Context, token string) (ResumeWithAnalysis, error)
	IncrementShareViews(ctx context.Context, token string) error
}
