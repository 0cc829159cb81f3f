package resumes

import "time"

// AnalysisCategory holds one rubric's result.
type AnalysisCategory struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// AnalysisData is the normalized output of one analysis run. The category
// set is closed: exactly these five rubrics, no dynamic keys.
type AnalysisData struct {
	LogicStructure         AnalysisCategory `json:"logicStructure"`
	JobSuitability         AnalysisCategory `json:"jobSuitability"`
	Differentiation        AnalysisCategory `json:"differentiation"`
	WritingQuality         AnalysisCategory `json:"writingQuality"`
	InterviewerPerspective AnalysisCategory `json:"interviewerPerspective"`
	OverallScore           int              `json:"overallScore"`
	Summary                string           `json:"summary"`
	AnalyzedAt             time.Time        `json:"analyzedAt"`
}

// Categories returns the five rubric results in their fixed order.
func (d AnalysisData) Categories() [5]AnalysisCategory {
	return [5]AnalysisCategory{
		d.LogicStructure,
		d.JobSuitability,
		d.Differentiation,
		d.WritingQuality,
		d.InterviewerPerspective,
	}
}

// AnalysisResult is what the analyze endpoint returns. ID is the resume row
// id once persisted and an ephemeral UUID otherwise; ResumeID is empty when
// the result was not stored.
type AnalysisResult struct {
	AnalysisData
	ID       string `json:"id"`
	ResumeID string `json:"resumeId"`
}

// Resume is one stored resume essay with its sharing metadata.
type Resume struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	OriginalText   string     `json:"originalText"`
	Title          string     `json:"title"`
	IsBookmarked   bool       `json:"isBookmarked"`
	ShareToken     string     `json:"shareToken,omitempty"`
	IsSharePublic  bool       `json:"isSharePublic"`
	ShareExpiresAt *time.Time `json:"shareExpiresAt,omitempty"`
	ShareViewCount int        `json:"shareViewCount"`
	LastSharedAt   *time.Time `json:"lastSharedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// AnalysisRecord mirrors one analysis_results row.
type AnalysisRecord struct {
	ID                          string       `json:"id"`
	ResumeID                    string       `json:"resumeId"`
	LogicStructureScore         int          `json:"logicStructureScore"`
	JobSuitabilityScore         int          `json:"jobSuitabilityScore"`
	DifferentiationScore        int          `json:"differentiationScore"`
	WritingQualityScore         int          `json:"writingQualityScore"`
	InterviewerPerspectiveScore int          `json:"interviewerPerspectiveScore"`
	OverallScore                int          `json:"overallScore"`
	Summary                     string       `json:"summary"`
	Data                        AnalysisData `json:"analysisData"`
	AnalyzedAt                  time.Time    `json:"analyzedAt"`
}

// ResumeWithAnalysis is the persisted 0..1 join, read as a typed optional:
// Analysis is nil when the resume has no analysis row.
type ResumeWithAnalysis struct {
	Resume
	Analysis *AnalysisRecord `json:"analysis"`
}

// newAnalysisRecord flattens normalized analysis data into its row shape.
func newAnalysisRecord(id, resumeID string, data AnalysisData) AnalysisRecord {
	return AnalysisRecord{
		ID:                          id,
		ResumeID:                    resumeID,
		LogicStructureScore:         data.LogicStructure.Score,
		JobSuitabilityScore:         data.JobSuitability.Score,
		DifferentiationScore:        data.Differentiation.Score,
		WritingQualityScore:         data.WritingQuality.Score,
		InterviewerPerspectiveScore: data.InterviewerPerspective.Score,
		OverallScore:                data.OverallScore,
		Summary:                     data.Summary,
		Data:                        data,
		AnalyzedAt:                  data.AnalyzedAt,
	}
}
