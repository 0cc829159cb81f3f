package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres. Every owner-scoped statement keys
// on user_id in the WHERE clause so no query can cross identities.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `
r.id, r.user_id, r.original_text, r.title, r.is_bookmarked,
r.share_token, r.is_share_public, r.share_expires_at, r.share_view_count, r.last_shared_at,
r.created_at, r.updated_at`

const analysisColumns = `
a.id, a.resume_id, a.logic_structure_score, a.job_suitability_score, a.differentiation_score,
a.writing_quality_score, a.interviewer_perspective_score, a.overall_score, a.summary,
a.analysis_data, a.analyzed_at`

// CreateResume inserts a new resume row.
func (r *PGRepo) CreateResume(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (
	id, user_id, original_text, title, is_bookmarked,
	share_token, is_share_public, share_expires_at, share_view_count, last_shared_at,
	created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.OriginalText,
		nullString(resume.Title),
		resume.IsBookmarked,
		nullString(resume.ShareToken),
		resume.IsSharePublic,
		nullTime(resume.ShareExpiresAt),
		resume.ShareViewCount,
		nullTime(resume.LastSharedAt),
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	return err
}

// CreateAnalysis inserts the analysis row belonging to a resume.
func (r *PGRepo) CreateAnalysis(ctx context.Context, record AnalysisRecord) error {
	const query = `
INSERT INTO analysis_results (
	id, resume_id, logic_structure_score, job_suitability_score, differentiation_score,
	writing_quality_score, interviewer_perspective_score, overall_score, summary,
	analysis_data, analyzed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	payload, err := json.Marshal(record.Data)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.ResumeID,
		record.LogicStructureScore,
		record.JobSuitabilityScore,
		record.DifferentiationScore,
		record.WritingQualityScore,
		record.InterviewerPerspectiveScore,
		record.OverallScore,
		record.Summary,
		payload,
		record.AnalyzedAt,
	)
	return err
}

// ListByUser returns a page of the user's resumes with analyses and the
// total count. Score sorts order by the joined overall score in SQL.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]ResumeWithAnalysis, int, error) {
	var orderBy string
	switch opts.Sort {
	case SortOldest:
		orderBy = "r.created_at ASC"
	case SortScoreHigh:
		orderBy = "COALESCE(a.overall_score, 0) DESC, r.created_at DESC"
	case SortScoreLow:
		orderBy = "COALESCE(a.overall_score, 0) ASC, r.created_at DESC"
	default:
		orderBy = "r.created_at DESC"
	}

	where := "r.user_id = $1"
	if opts.BookmarkedOnly {
		where += " AND r.is_bookmarked = TRUE"
	}

	query := fmt.Sprintf(`
SELECT %s, %s, COUNT(*) OVER() AS total
FROM resumes r
LEFT JOIN analysis_results a ON a.resume_id = r.id
WHERE %s
ORDER BY %s
LIMIT $2 OFFSET $3`, resumeColumns, analysisColumns, where, orderBy)

	rows, err := r.DB.QueryContext(ctx, query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []ResumeWithAnalysis{}
	total := 0
	for rows.Next() {
		item, rowTotal, err := scanJoinedRow(rows, true)
		if err != nil {
			return nil, 0, err
		}
		total = rowTotal
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// GetByID returns one owned resume with its analysis.
func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (ResumeWithAnalysis, error) {
	query := fmt.Sprintf(`
SELECT %s, %s
FROM resumes r
LEFT JOIN analysis_results a ON a.resume_id = r.id
WHERE r.id = $1 AND r.user_id = $2
LIMIT 1`, resumeColumns, analysisColumns)

	item, _, err := scanJoinedRow(r.DB.QueryRowContext(ctx, query, resumeID, userID), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResumeWithAnalysis{}, ErrNotFound
		}
		return ResumeWithAnalysis{}, err
	}
	return item, nil
}

// Update patches title and/or bookmark flag and returns the updated row.
func (r *PGRepo) Update(ctx context.Context, userID, resumeID string, update ResumeUpdate) (Resume, error) {
	sets := []string{"updated_at = now()"}
	args := []any{resumeID, userID}
	if update.Title != nil {
		args = append(args, *update.Title)
		sets = append(sets, "title = $"+strconv.Itoa(len(args)))
	}
	if update.IsBookmarked != nil {
		args = append(args, *update.IsBookmarked)
		sets = append(sets, "is_bookmarked = $"+strconv.Itoa(len(args)))
	}

	query := fmt.Sprintf(`
UPDATE resumes r SET %s
WHERE r.id = $1 AND r.user_id = $2
RETURNING %s`, strings.Join(sets, ", "), resumeColumns)

	return scanResumeRow(r.DB.QueryRowContext(ctx, query, args...))
}

// Delete removes a resume; analysis rows cascade.
func (r *PGRepo) Delete(ctx context.Context, userID, resumeID string) error {
	const query = `DELETE FROM resumes WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, resumeID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetShare installs a fresh share token and opens the resume up.
func (r *PGRepo) SetShare(ctx context.Context, userID, resumeID, token string, expiresAt *time.Time, sharedAt time.Time) error {
	const query = `
UPDATE resumes
SET share_token = $3, is_share_public = TRUE, share_expires_at = $4,
    last_shared_at = $5, updated_at = now()
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, resumeID, userID, token, nullTime(expiresAt), sharedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateShare changes the public flag and/or expiry of an existing share.
func (r *PGRepo) UpdateShare(ctx context.Context, userID, resumeID string, update ShareUpdate) (Resume, error) {
	sets := []string{"updated_at = now()"}
	args := []any{resumeID, userID}
	if update.IsPublic != nil {
		args = append(args, *update.IsPublic)
		sets = append(sets, "is_share_public = $"+strconv.Itoa(len(args)))
	}
	if update.ExpiresAt != nil {
		args = append(args, nullTime(*update.ExpiresAt))
		sets = append(sets, "share_expires_at = $"+strconv.Itoa(len(args)))
	}

	query := fmt.Sprintf(`
UPDATE resumes r SET %s
WHERE r.id = $1 AND r.user_id = $2
RETURNING %s`, strings.Join(sets, ", "), resumeColumns)

	return scanResumeRow(r.DB.QueryRowContext(ctx, query, args...))
}

// ClearShare disables sharing for a resume.
func (r *PGRepo) ClearShare(ctx context.Context, userID, resumeID string) error {
	const query = `
UPDATE resumes
SET share_token = NULL, is_share_public = FALSE, share_expires_at = NULL, updated_at = now()
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, resumeID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByShareToken resolves a share token regardless of owner. Public/expiry
// checks stay in the service so closed shares 404 consistently.
func (r *PGRepo) GetByShareToken(ctx context.Context, token string) (ResumeWithAnalysis, error) {
	query := fmt.Sprintf(`
SELECT %s, %s
FROM resumes r
LEFT JOIN analysis_results a ON a.resume_id = r.id
WHERE r.share_token = $1
LIMIT 1`, resumeColumns, analysisColumns)

	item, _, err := scanJoinedRow(r.DB.QueryRowContext(ctx, query, token), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResumeWithAnalysis{}, ErrNotFound
		}
		return ResumeWithAnalysis{}, err
	}
	return item, nil
}

// IncrementShareViews bumps the public view counter.
func (r *PGRepo) IncrementShareViews(ctx context.Context, token string) error {
	const query = `UPDATE resumes SET share_view_count = share_view_count + 1 WHERE share_token = $1`
	res, err := r.DB.ExecContext(ctx, query, token)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJoinedRow(row rowScanner, withTotal bool) (ResumeWithAnalysis, int, error) {
	var (
		item ResumeWithAnalysis

		title          sql.NullString
		shareToken     sql.NullString
		shareExpiresAt sql.NullTime
		lastSharedAt   sql.NullTime

		analysisID         sql.NullString
		analysisResumeID   sql.NullString
		logicScore         sql.NullInt64
		jobScore           sql.NullInt64
		diffScore          sql.NullInt64
		writingScore       sql.NullInt64
		interviewerScore   sql.NullInt64
		overallScoreCol    sql.NullInt64
		summary            sql.NullString
		analysisData       sql.NullString
		analyzedAt         sql.NullTime

		total int
	)

	dest := []any{
		&item.ID,
		&item.UserID,
		&item.OriginalText,
		&title,
		&item.IsBookmarked,
		&shareToken,
		&item.IsSharePublic,
		&shareExpiresAt,
		&item.ShareViewCount,
		&lastSharedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
		&analysisID,
		&analysisResumeID,
		&logicScore,
		&jobScore,
		&diffScore,
		&writingScore,
		&interviewerScore,
		&overallScoreCol,
		&summary,
		&analysisData,
		&analyzedAt,
	}
	if withTotal {
		dest = append(dest, &total)
	}
	if err := row.Scan(dest...); err != nil {
		return ResumeWithAnalysis{}, 0, err
	}

	item.Title = title.String
	item.ShareToken = shareToken.String
	if shareExpiresAt.Valid {
		item.ShareExpiresAt = &shareExpiresAt.Time
	}
	if lastSharedAt.Valid {
		item.LastSharedAt = &lastSharedAt.Time
	}

	if analysisID.Valid {
		record := AnalysisRecord{
			ID:                          analysisID.String,
			ResumeID:                    analysisResumeID.String,
			LogicStructureScore:         int(logicScore.Int64),
			JobSuitabilityScore:         int(jobScore.Int64),
			DifferentiationScore:        int(diffScore.Int64),
			WritingQualityScore:         int(writingScore.Int64),
			InterviewerPerspectiveScore: int(interviewerScore.Int64),
			OverallScore:                int(overallScoreCol.Int64),
			Summary:                     summary.String,
			AnalyzedAt:                  analyzedAt.Time,
		}
		if analysisData.Valid {
			if err := json.Unmarshal([]byte(analysisData.String), &record.Data); err != nil {
				record.Data = AnalysisData{}
			}
		}
		item.Analysis = &record
	}
	return item, total, nil
}

func scanResumeRow(row *sql.Row) (Resume, error) {
	var (
		resume         Resume
		title          sql.NullString
		shareToken     sql.NullString
		shareExpiresAt sql.NullTime
		lastSharedAt   sql.NullTime
	)
	err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.OriginalText,
		&title,
		&resume.IsBookmarked,
		&shareToken,
		&resume.IsSharePublic,
		&shareExpiresAt,
		&resume.ShareViewCount,
		&lastSharedAt,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	resume.Title = title.String
	resume.ShareToken = shareToken.String
	if shareExpiresAt.Valid {
		resume.ShareExpiresAt = &shareExpiresAt.Time
	}
	if lastSharedAt.Valid {
		resume.LastSharedAt = &lastSharedAt.Time
	}
	return resume, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
