package resumes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/llm"
	"resumelens-backend/internal/shared/server/middleware"
	"resumelens-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the resumes service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis, history and share routes to the group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/resumes", h.listResumes)
	rg.GET("/resumes/compare", h.compareResumes)
	rg.GET("/resumes/:id", h.getResume)
	rg.PATCH("/resumes/:id", h.updateResume)
	rg.DELETE("/resumes/:id", h.deleteResume)
	rg.POST("/resumes/:id/share", h.createShare)
	rg.PATCH("/resumes/:id/share", h.updateShare)
	rg.DELETE("/resumes/:id/share", h.deleteShare)
	rg.GET("/share/:token", h.getShared)
}

type analyzeRequest struct {
	ResumeText string `json:"resumeText"`
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "로그인이 필요합니다")
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "잘못된 요청 형식입니다")
		return
	}

	result, err := h.Svc.Analyze(c.Request.Context(), userID, req.ResumeText)
	if err != nil {
		h.respondAnalyzeError(c, err)
		return
	}

	c.Set("resumeId", result.ResumeID)
	respond.JSON(c, http.StatusCreated, result)
}

// respondAnalyzeError maps the closed failure taxonomy to HTTP statuses.
// Nothing from the upstream payload leaks to the client; each kind yields a
// single human-readable message and, for throttling, a retry hint.
func (h *Handler) respondAnalyzeError(c *gin.Context, err error) {
	if ve, ok := AsValidationError(err); ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", ve.Message)
		return
	}
	if gw, ok := llm.AsError(err); ok {
		switch gw.Kind {
		case llm.KindTimeout:
			respond.Error(c, http.StatusGatewayTimeout, "llm_timeout", "분석 시간이 초과됐습니다. 다시 시도해주세요")
		case llm.KindRateLimited:
			respond.ErrorWithRetry(c, http.StatusTooManyRequests, "rate_limited", "요청이 너무 많습니다. 잠시 후 다시 시도해주세요", gw.RetryAfter)
		case llm.KindBadResponse:
			respond.Error(c, http.StatusInternalServerError, "bad_upstream_response", "AI 분석 결과를 받지 못했습니다. 다시 시도해주세요")
		default:
			respond.Error(c, http.StatusInternalServerError, "upstream_error", "AI 분석 중 오류가 발생했습니다. 다시 시도해주세요")
		}
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "AI 분석 중 오류가 발생했습니다")
}

func (h *Handler) listResumes(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	opts := ListOptions{
		Sort:           c.DefaultQuery("sort", SortLatest),
		BookmarkedOnly: c.Query("bookmarked") == "true",
		Limit:          20,
		Offset:         0,
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			opts.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			opts.Offset = parsed
		}
	}

	items, total, err := h.Svc.List(c.Request.Context(), userID, opts)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "히스토리를 불러오는데 실패했습니다")
		return
	}

	respond.OK(c, gin.H{
		"resumes": items,
		"total":   total,
	})
}

func (h *Handler) getResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	item, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "자소서를 찾을 수 없습니다")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "자소서를 불러오는데 실패했습니다")
		return
	}
	respond.OK(c, item)
}

type updateResumeRequest struct {
	Title        *string `json:"title"`
	IsBookmarked *bool   `json:"is_bookmarked"`
}

func (h *Handler) updateResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "잘못된 요청 형식입니다")
		return
	}

	resume, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), ResumeUpdate{
		Title:        req.Title,
		IsBookmarked: req.IsBookmarked,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyUpdate):
			respond.Error(c, http.StatusBadRequest, "validation_error", "수정할 내용이 없습니다")
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "자소서를 찾을 수 없습니다")
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "수정에 실패했습니다")
		}
		return
	}
	respond.OK(c, resume)
}

func (h *Handler) deleteResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "자소서를 찾을 수 없습니다")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "삭제에 실패했습니다")
		return
	}
	respond.OK(c, gin.H{"success": true})
}

type createShareRequest struct {
	ExpiresIn string `json:"expiresIn"`
}

func (h *Handler) createShare(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	// A missing or malformed body falls back to the default expiry.
	var req createShareRequest
	_ = c.ShouldBindJSON(&req)

	expiry, err := ParseShareExpiry(req.ExpiresIn)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "잘못된 요청 형식입니다")
		return
	}

	info, err := h.Svc.CreateShare(c.Request.Context(), userID, c.Param("id"), expiry)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "자소서를 찾을 수 없습니다")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "공유 링크 생성에 실패했습니다")
		return
	}
	respond.OK(c, info)
}

type updateShareRequest struct {
	IsSharePublic *bool   `json:"is_share_public"`
	ExpiresIn     *string `json:"expiresIn"`
}

func (h *Handler) updateShare(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "잘못된 요청 형식입니다")
		return
	}

	var expiry *ShareExpiry
	if req.ExpiresIn != nil {
		parsed, err := ParseShareExpiry(*req.ExpiresIn)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "잘못된 요청 형식입니다")
			return
		}
		expiry = &parsed
	}

	resume, err := h.Svc.UpdateShare(c.Request.Context(), userID, c.Param("id"), req.IsSharePublic, expiry)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyUpdate):
			respond.Error(c, http.StatusBadRequest, "validation_error", "수정할 내용이 없습니다")
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "자소서를 찾을 수 없습니다")
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "공유 설정 업데이트에 실패했습니다")
		}
		return
	}
	respond.OK(c, gin.H{
		"shareToken":    resume.ShareToken,
		"isSharePublic": resume.IsSharePublic,
		"shareExpires":  resume.ShareExpiresAt,
	})
}

func (h *Handler) deleteShare(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.DeleteShare(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "자소서를 찾을 수 없습니다")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "공유 해제에 실패했습니다")
		return
	}
	respond.OK(c, gin.H{"success": true})
}

// getShared is the public share view: no auth, token-scoped read only.
func (h *Handler) getShared(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		respond.Error(c, http.StatusNotFound, "not_found", "공유된 자소서를 찾을 수 없습니다")
		return
	}

	item, err := h.Svc.GetShared(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrShareClosed) {
			respond.Error(c, http.StatusNotFound, "not_found", "공유된 자소서를 찾을 수 없습니다")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "공유된 자소서를 불러오는데 실패했습니다")
		return
	}

	// The owner-only fields stay out of the public payload.
	respond.OK(c, gin.H{
		"id":             item.ID,
		"title":          item.Title,
		"originalText":   item.OriginalText,
		"createdAt":      item.CreatedAt,
		"shareViewCount": item.ShareViewCount + 1,
		"analysis":       item.Analysis,
	})
}

func (h *Handler) compareResumes(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	idsParam := strings.TrimSpace(c.Query("ids"))
	if idsParam == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "비교할 자소서를 선택해주세요")
		return
	}
	var ids []string
	for _, id := range strings.Split(idsParam, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}

	items, err := h.Svc.Compare(c.Request.Context(), userID, ids)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "비교 데이터를 불러오는데 실패했습니다")
		return
	}
	respond.OK(c, gin.H{"resumes": items})
}
