package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func joinedColumns() []string {
	return []string{
		"id", "user_id", "original_text", "title", "is_bookmarked",
		"share_token", "is_share_public", "share_expires_at", "share_view_count", "last_shared_at",
		"created_at", "updated_at",
		"a_id", "a_resume_id", "logic_structure_score", "job_suitability_score", "differentiation_score",
		"writing_quality_score", "interviewer_perspective_score", "overall_score", "summary",
		"analysis_data", "analyzed_at",
	}
}

func TestPGRepoCreateAnalysisMarshalsPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	data := NormalizeAnalysis(json.RawMessage(fullAnalysisJSON()), now)
	record := newAnalysisRecord("analysis-1", "resume-1", data)

	mock.ExpectExec("INSERT INTO analysis_results").
		WithArgs(
			record.ID,
			record.ResumeID,
			80, 70, 60, 90, 75,
			75,
			record.Summary,
			sqlmock.AnyArg(), // analysis_data json
			record.AnalyzedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateAnalysis(context.Background(), record); err != nil {
		t.Fatalf("CreateAnalysis: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM resumes r").
		WithArgs("resume-1", "user-1").
		WillReturnRows(sqlmock.NewRows(joinedColumns()))

	_, err = repo.GetByID(context.Background(), "user-1", "resume-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDScansNullAnalysis(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows(joinedColumns()).AddRow(
		"resume-1", "user-1", "text", "제목", false,
		nil, false, nil, 0, nil,
		now, now,
		nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil,
	)
	mock.ExpectQuery("SELECT (.+) FROM resumes r").
		WithArgs("resume-1", "user-1").
		WillReturnRows(rows)

	item, err := repo.GetByID(context.Background(), "user-1", "resume-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Analysis != nil {
		t.Fatalf("expected nil analysis for unjoined row, got %+v", item.Analysis)
	}
	if item.Title != "제목" {
		t.Fatalf("unexpected title %q", item.Title)
	}
}

func TestPGRepoListByUserScoreSortInSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	payload, _ := json.Marshal(NormalizeAnalysis(json.RawMessage(fullAnalysisJSON()), now))
	rows := sqlmock.NewRows(append(joinedColumns(), "total")).AddRow(
		"resume-1", "user-1", "text", "제목", true,
		"token", true, nil, 2, now,
		now, now,
		"analysis-1", "resume-1", 80, 70, 60, 90, 75, 75, "요약",
		string(payload), now,
		7,
	)
	mock.ExpectQuery(`ORDER BY COALESCE\(a\.overall_score, 0\) DESC`).
		WithArgs("user-1", 20, 0).
		WillReturnRows(rows)

	items, total, err := repo.ListByUser(context.Background(), "user-1", ListOptions{
		Sort: SortScoreHigh, Limit: 20, Offset: 0,
	})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 7 {
		t.Fatalf("expected total from window count, got %d", total)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	analysis := items[0].Analysis
	if analysis == nil || analysis.OverallScore != 75 {
		t.Fatalf("expected joined analysis, got %+v", analysis)
	}
	if analysis.Data.LogicStructure.Score != 80 {
		t.Fatalf("expected decoded analysis_data, got %+v", analysis.Data)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoBookmarkedFilterInSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery(`AND r\.is_bookmarked = TRUE`).
		WithArgs("user-1", 20, 0).
		WillReturnRows(sqlmock.NewRows(append(joinedColumns(), "total")))

	items, total, err := repo.ListByUser(context.Background(), "user-1", ListOptions{
		Sort: SortLatest, BookmarkedOnly: true, Limit: 20,
	})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty page, got %d of %d", len(items), total)
	}
}

func TestPGRepoDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("DELETE FROM resumes").
		WithArgs("resume-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "user-2", "resume-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoClearShareResetsColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec(`SET share_token = NULL, is_share_public = FALSE`).
		WithArgs("resume-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ClearShare(context.Background(), "user-1", "resume-1"); err != nil {
		t.Fatalf("ClearShare: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoIncrementShareViews(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec(`share_view_count = share_view_count \+ 1`).
		WithArgs("token-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementShareViews(context.Background(), "token-1"); err != nil {
		t.Fatalf("IncrementShareViews: %v", err)
	}
}
