package resumes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"resumelens-backend/internal/llm"
	"resumelens-backend/internal/shared/metrics"
	"resumelens-backend/internal/shared/telemetry"
)

const compareMax = 3

// Service contains business logic for resume analysis and history.
type Service struct {
	Repo   Repo
	LLM    llm.Client
	AppURL string
	Now    func() time.Time
}

func (s *Service) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Analyze runs the full pipeline for one submission: validate, call the
// model, normalize, then store best-effort. Exactly one model call is issued
// per request; persistence failures never block the result from reaching the
// caller.
func (s *Service) Analyze(ctx context.Context, userID, resumeText string) (AnalysisResult, error) {
	text, err := ValidateResumeText(resumeText)
	if err != nil {
		return AnalysisResult{}, err
	}
	if s.LLM == nil {
		return AnalysisResult{}, errors.New("missing llm client")
	}

	metrics.IncAnalysisStarted()
	startedAt := s.clock()

	raw, err := s.LLM.Analyze(ctx, text)
	if err != nil {
		kind := "internal"
		if gw, ok := llm.AsError(err); ok {
			kind = string(gw.Kind)
		}
		metrics.IncAnalysisFailed(kind)
		telemetry.Error("analysis.failed", map[string]any{
			"user_id": userID,
			"kind":    kind,
			"error":   err.Error(),
		})
		return AnalysisResult{}, err
	}

	data := NormalizeAnalysis(raw, s.clock())

	result := AnalysisResult{
		AnalysisData: data,
		ID:           uuid.NewString(),
	}
	if resumeID := s.persist(ctx, userID, text, data); resumeID != "" {
		result.ID = resumeID
		result.ResumeID = resumeID
	}

	completedAt := s.clock()
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0)
	telemetry.Info("analysis.complete", map[string]any{
		"user_id":       userID,
		"resume_id":     result.ResumeID,
		"overall_score": data.OverallScore,
		"persisted":     result.ResumeID != "",
		"duration_ms":   float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0,
	})
	return result, nil
}

// persist writes the resume row then the analysis row and returns the resume
// id, or "" when anything failed. The model call has already been paid for,
// so failures here are absorbed: an orphaned resume row after a failed
// analysis write is tolerated rather than rolled back.
func (s *Service) persist(ctx context.Context, userID, text string, data AnalysisData) string {
	if s.Repo == nil || userID == "" {
		return ""
	}
	now := s.clock().UTC()
	resume := Resume{
		ID:           uuid.NewString(),
		UserID:       userID,
		OriginalText: text,
		Title:        DeriveTitle(text),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateResume(ctx, resume); err != nil {
		s.logPersistFailure(userID, "", err)
		return ""
	}
	record := newAnalysisRecord(uuid.NewString(), resume.ID, data)
	if err := s.Repo.CreateAnalysis(ctx, record); err != nil {
		s.logPersistFailure(userID, resume.ID, err)
		return ""
	}
	return resume.ID
}

func (s *Service) logPersistFailure(userID, resumeID string, err error) {
	metrics.IncAnalysisPersistFailed()
	telemetry.Error("analysis.persist_failed", map[string]any{
		"user_id":   userID,
		"resume_id": resumeID,
		"error":     err.Error(),
	})
}

// List returns the user's resumes with analyses, plus the total count.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]ResumeWithAnalysis, int, error) {
	if userID == "" {
		return nil, 0, errors.New("userID is required")
	}
	switch opts.Sort {
	case SortLatest, SortOldest, SortScoreHigh, SortScoreLow:
	default:
		opts.Sort = SortLatest
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 50 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.Repo.ListByUser(ctx, userID, opts)
}

// Get returns one owned resume with its analysis.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (ResumeWithAnalysis, error) {
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// Update patches title and/or bookmark flag.
func (s *Service) Update(ctx context.Context, userID, resumeID string, update ResumeUpdate) (Resume, error) {
	if update.Title == nil && update.IsBookmarked == nil {
		return Resume{}, ErrEmptyUpdate
	}
	if update.Title != nil {
		title := []rune(*update.Title)
		if len(title) > 200 {
			trimmed := string(title[:200])
			update.Title = &trimmed
		}
	}
	return s.Repo.Update(ctx, userID, resumeID, update)
}

// Delete removes a resume; the analysis row goes with it.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	return s.Repo.Delete(ctx, userID, resumeID)
}

// ShareInfo describes a minted share link.
type ShareInfo struct {
	ShareLink  string     `json:"shareLink"`
	ShareToken string     `json:"shareToken"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

// CreateShare mints a fresh token for an owned resume and makes it public.
func (s *Service) CreateShare(ctx context.Context, userID, resumeID string, expiry ShareExpiry) (ShareInfo, error) {
	if _, err := s.Repo.GetByID(ctx, userID, resumeID); err != nil {
		return ShareInfo{}, err
	}
	now := s.clock().UTC()
	token := newShareToken()
	expiresAt := expiry.ExpiresAt(now)
	if err := s.Repo.SetShare(ctx, userID, resumeID, token, expiresAt, now); err != nil {
		return ShareInfo{}, err
	}
	return ShareInfo{
		ShareLink:  s.AppURL + "/share/" + token,
		ShareToken: token,
		ExpiresAt:  expiresAt,
	}, nil
}

// UpdateShare changes public flag and/or expiry of an existing share.
func (s *Service) UpdateShare(ctx context.Context, userID, resumeID string, isPublic *bool, expiry *ShareExpiry) (Resume, error) {
	if isPublic == nil && expiry == nil {
		return Resume{}, ErrEmptyUpdate
	}
	update := ShareUpdate{IsPublic: isPublic}
	if expiry != nil {
		expiresAt := expiry.ExpiresAt(s.clock().UTC())
		update.ExpiresAt = &expiresAt
	}
	return s.Repo.UpdateShare(ctx, userID, resumeID, update)
}

// DeleteShare disables sharing: token removed, public flag cleared.
func (s *Service) DeleteShare(ctx context.Context, userID, resumeID string) error {
	return s.Repo.ClearShare(ctx, userID, resumeID)
}

// GetShared resolves a public share token to its resume and analysis, and
// bumps the view counter best-effort.
func (s *Service) GetShared(ctx context.Context, token string) (ResumeWithAnalysis, error) {
	item, err := s.Repo.GetByShareToken(ctx, token)
	if err != nil {
		return ResumeWithAnalysis{}, err
	}
	if !shareOpen(item.Resume, s.clock().UTC()) {
		return ResumeWithAnalysis{}, ErrShareClosed
	}
	if err := s.Repo.IncrementShareViews(ctx, token); err != nil {
		telemetry.Error("share.view_count_failed", map[string]any{
			"resume_id": item.ID,
			"error":     err.Error(),
		})
	}
	return item, nil
}

// Compare loads up to three owned resumes with their analyses, in the
// requested order. Unknown or foreign ids are skipped.
func (s *Service) Compare(ctx context.Context, userID string, ids []string) ([]ResumeWithAnalysis, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	if len(ids) > compareMax {
		ids = ids[:compareMax]
	}
	out := make([]ResumeWithAnalysis, 0, len(ids))
	for _, id := range ids {
		item, err := s.Repo.GetByID(ctx, userID, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
