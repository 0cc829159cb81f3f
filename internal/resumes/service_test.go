package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"resumelens-backend/internal/llm"
)

type stubLLM struct {
	raw   string
	err   error
	calls int
}

func (s *stubLLM) Analyze(ctx context.Context, resumeText string) (json.RawMessage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.raw), nil
}

func validResumeText() string {
	out := make([]rune, 100)
	for i := range out {
		out[i] = '가'
	}
	return string(out)
}

func newTestService(stub *stubLLM) *Service {
	return &Service{
		Repo:   NewMemoryRepo(),
		LLM:    stub,
		AppURL: "http://localhost:3000",
		Now:    func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestAnalyzePersistsResumeAndAnalysis(t *testing.T) {
	stub := &stubLLM{raw: fullAnalysisJSON()}
	svc := newTestService(stub)

	result, err := svc.Analyze(context.Background(), "user-1", validResumeText())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", stub.calls)
	}
	if result.ResumeID == "" {
		t.Fatalf("expected persisted resumeId")
	}
	if result.ID != result.ResumeID {
		t.Fatalf("expected result id to match resume id when persisted")
	}
	if result.OverallScore != 75 {
		t.Fatalf("expected overall 75, got %d", result.OverallScore)
	}

	stored, err := svc.Get(context.Background(), "user-1", result.ResumeID)
	if err != nil {
		t.Fatalf("Get after analyze: %v", err)
	}
	if stored.Analysis == nil {
		t.Fatalf("expected analysis row alongside resume")
	}
	if stored.Analysis.OverallScore != 75 {
		t.Fatalf("expected stored overall 75, got %d", stored.Analysis.OverallScore)
	}
	if stored.Title == "" {
		t.Fatalf("expected derived title")
	}
}

func TestAnalyzeValidationFailsBeforeModelCall(t *testing.T) {
	stub := &stubLLM{raw: fullAnalysisJSON()}
	svc := newTestService(stub)

	_, err := svc.Analyze(context.Background(), "user-1", "too short")
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no model call on validation failure, got %d", stub.calls)
	}
}

func TestAnalyzeModelErrorPassesThrough(t *testing.T) {
	wantErr := &llm.Error{Kind: llm.KindRateLimited, RetryAfter: 30, Err: errors.New("quota")}
	svc := newTestService(&stubLLM{err: wantErr})

	_, err := svc.Analyze(context.Background(), "user-1", validResumeText())
	gw, ok := llm.AsError(err)
	if !ok {
		t.Fatalf("expected llm error, got %v", err)
	}
	if gw.Kind != llm.KindRateLimited || gw.RetryAfter != 30 {
		t.Fatalf("unexpected error %+v", gw)
	}
}

type failingRepo struct {
	Repo
	failAnalysis bool
}

func (f *failingRepo) CreateResume(ctx context.Context, resume Resume) error {
	if !f.failAnalysis {
		return errors.New("write failed")
	}
	return f.Repo.CreateResume(ctx, resume)
}

func (f *failingRepo) CreateAnalysis(ctx context.Context, record AnalysisRecord) error {
	return errors.New("write failed")
}

func TestAnalyzeSucceedsWhenPersistenceFails(t *testing.T) {
	svc := newTestService(&stubLLM{raw: fullAnalysisJSON()})
	svc.Repo = &failingRepo{Repo: NewMemoryRepo()}

	result, err := svc.Analyze(context.Background(), "user-1", validResumeText())
	if err != nil {
		t.Fatalf("expected success despite persistence failure, got %v", err)
	}
	if result.ResumeID != "" {
		t.Fatalf("expected empty resumeId, got %q", result.ResumeID)
	}
	if result.ID == "" {
		t.Fatalf("expected ephemeral result id")
	}
	if result.OverallScore != 75 {
		t.Fatalf("expected full analysis payload, got overall %d", result.OverallScore)
	}
}

func TestAnalyzeSucceedsWhenAnalysisWriteFails(t *testing.T) {
	svc := newTestService(&stubLLM{raw: fullAnalysisJSON()})
	svc.Repo = &failingRepo{Repo: NewMemoryRepo(), failAnalysis: true}

	result, err := svc.Analyze(context.Background(), "user-1", validResumeText())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.ResumeID != "" {
		t.Fatalf("expected empty resumeId when analysis write fails, got %q", result.ResumeID)
	}
}

func TestListDefaultsAndCaps(t *testing.T) {
	stub := &stubLLM{raw: fullAnalysisJSON()}
	svc := newTestService(stub)
	for i := 0; i < 3; i++ {
		if _, err := svc.Analyze(context.Background(), "user-1", validResumeText()); err != nil {
			t.Fatalf("seed analyze: %v", err)
		}
	}

	items, total, err := svc.List(context.Background(), "user-1", ListOptions{Sort: "bogus", Limit: 500})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 items, got %d of %d", len(items), total)
	}

	if _, _, err := svc.List(context.Background(), "", ListOptions{}); err == nil {
		t.Fatalf("expected error for empty user")
	}
}

func TestUpdateRequiresFields(t *testing.T) {
	svc := newTestService(&stubLLM{raw: fullAnalysisJSON()})

	if _, err := svc.Update(context.Background(), "user-1", "id", ResumeUpdate{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
}

func TestUpdateClampsLongTitle(t *testing.T) {
	svc := newTestService(&stubLLM{raw: fullAnalysisJSON()})
	result, err := svc.Analyze(context.Background(), "user-1", validResumeText())
	if err != nil {
		t.Fatalf("seed analyze: %v", err)
	}

	long := make([]rune, 300)
	for i := range long {
		long[i] = '가'
	}
	title := string(long)
	updated, err := svc.Update(context.Background(), "user-1", result.ResumeID, ResumeUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := len([]rune(updated.Title)); got != 200 {
		t.Fatalf("expected title clamped to 200 runes, got %d", got)
	}
}

func TestShareLifecycle(t *testing.T) {
	svc := newTestService(&stubLLM{raw: fullAnalysisJSON()})
	result, err := svc.Analyze(context.Background(), "user-1", validResumeText())
	if err != nil {
		t.Fatalf("seed analyze: %v", err)
	}
	resumeID := result.ResumeID

	info, err := svc.CreateShare(context.Background(), "user-1", resumeID, ShareExpiryWeek)
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if len(info.ShareToken) != 32 {
		t.Fatalf("expected 32-char token, got %q", info.ShareToken)
	}
	if info.ShareLink != "http://localhost:3000/share/"+info.ShareToken {
		t.Fatalf("unexpected link %q", info.ShareLink)
	}
	if info.ExpiresAt == nil {
		t.Fatalf("expected week expiry deadline")
	}

	shared, err := svc.GetShared(context.Background(), info.ShareToken)
	if err != nil {
		t.Fatalf("GetShared: %v", err)
	}
	if shared.ID != resumeID {
		t.Fatalf("expected shared resume %s, got %s", resumeID, shared.ID)
	}

	// Re-sharing mints a new token; the old one stops resolving.
	second, err := svc.CreateShare(context.Background(), "user-1", resumeID, ShareExpiryNever)
	if err != nil {
		t.Fatalf("CreateShare again: %v", err)
	}
	if second.ShareToken == info.ShareToken {
		t.Fatalf("expected fresh token on re-share")
	}
	if _, err := svc.GetShared(context.Background(), info.ShareToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old token to be gone, got %v", err)
	}

	// Closing the share makes the token 404.
	if err := svc.DeleteShare(context.Background(), "user-1", resumeID); err != nil {
		t.Fatalf("DeleteShare: %v", err)
	}
	_, err = svc.GetShared(context.Background(), second.ShareToken)
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrShareClosed) {
		t.Fatalf("expected closed share to fail, got %v", err)
	}
}

func TestGetSharedExpiredToken(t *testing.T) {
	svc := newTestService(&stubLLM{raw: fullAnalysisJSON()})
	result, err := svc.Analyze(context.Background(), "user-1", validResumeText())
	if err != nil {
		t.Fatalf("seed analyze: %v", err)
	}

	info, err := svc.CreateShare(context.Background(), "user-1", result.ResumeID, ShareExpiryWeek)
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	// Jump past the one-week deadline.
	svc.Now = func() time.Time { return time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC) }
	if _, err := svc.GetShared(context.Background(), info.ShareToken); !errors.Is(err, ErrShareClosed) {
		t.Fatalf("expected ErrShareClosed after expiry, got %v", err)
	}
}

func TestGetSharedCountsViews(t *testing.T) {
	svc := newTestService(&stubLLM{raw: fullAnalysisJSON()})
	result, err := svc.Analyze(context.Background(), "user-1", validResumeText())
	if err != nil {
		t.Fatalf("seed analyze: %v", err)
	}
	info, err := svc.CreateShare(context.Background(), "user-1", result.ResumeID, ShareExpiryNever)
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.GetShared(context.Background(), info.ShareToken); err != nil {
			t.Fatalf("GetShared %d: %v", i, err)
		}
	}
	item, err := svc.Get(context.Background(), "user-1", result.ResumeID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.ShareViewCount != 3 {
		t.Fatalf("expected 3 views, got %d", item.ShareViewCount)
	}
}

func TestCompareSkipsForeignAndCapsAtThree(t *testing.T) {
	svc := newTestService(&stubLLM{raw: fullAnalysisJSON()})

	var ids []string
	for i := 0; i < 4; i++ {
		result, err := svc.Analyze(context.Background(), "user-1", validResumeText())
		if err != nil {
			t.Fatalf("seed analyze: %v", err)
		}
		ids = append(ids, result.ResumeID)
	}
	other, err := svc.Analyze(context.Background(), "user-2", validResumeText())
	if err != nil {
		t.Fatalf("seed analyze: %v", err)
	}

	items, err := svc.Compare(context.Background(), "user-1", append([]string{other.ResumeID}, ids...))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	// The foreign id is skipped and input is capped to three ids total.
	if len(items) != 2 {
		t.Fatalf("expected 2 items after cap and skip, got %d", len(items))
	}
	for _, item := range items {
		if item.UserID != "user-1" {
			t.Fatalf("expected only owned resumes, got %s", item.UserID)
		}
	}
}
