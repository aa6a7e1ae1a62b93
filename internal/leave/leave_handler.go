package leave

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	leaveerrors "github.com/SeptianSamdani/leave-management-api/internal/leave/errors"
	"github.com/SeptianSamdani/leave-management-api/internal/shared/apperror"
	"github.com/SeptianSamdani/leave-management-api/internal/shared/response"
	"github.com/SeptianSamdani/leave-management-api/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxAttachmentSize caps uploads at 2 MB, matching the client contract.
const maxAttachmentSize = 2 << 20

var allowedAttachmentExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func getActorID(c *gin.Context) string {
	return c.GetString("user_id_validated")
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	actorID := getActorID(c)
	h.logger.Debug("http create leave", zap.String("actor_id", actorID))

	var req CreateLeaveRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("http create leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	fileHeader, err := c.FormFile("attachment")
	if err != nil {
		h.writeServiceError(c, leaveerrors.ErrAttachmentRequired)
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAttachmentExts[ext] || fileHeader.Size > maxAttachmentSize {
		h.writeServiceError(c, leaveerrors.ErrAttachmentInvalid)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("http create leave attachment open failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "could not read attachment", nil)
		return
	}
	defer file.Close()

	upload := storage.Upload{Filename: fileHeader.Filename, Content: file}

	resp, err := h.service.Create(c.Request.Context(), actorID, req, &upload)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	ctx := c.Request.Context()
	actorID := getActorID(c)

	resp, err := h.service.GetAllForUser(ctx, actorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	paginated, meta := paginate(c, resp)
	response.Success(c, http.StatusOK, paginated, &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	ctx := c.Request.Context()
	targetID := c.Param("id")
	actorID := getActorID(c)

	resp, err := h.service.GetByIDForUser(ctx, actorID, targetID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	actorID := getActorID(c)

	if err := h.service.Cancel(ctx, actorID, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true}, nil)
}

func (h *Handler) Statistics(c *gin.Context) {
	ctx := c.Request.Context()
	actorID := getActorID(c)

	resp, err := h.service.Statistics(ctx, actorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AdminGetAll(c *gin.Context) {
	ctx := c.Request.Context()

	var q AdminListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Warn("http admin list leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.AdminGetAll(ctx, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	paginated, meta := paginate(c, resp)
	response.Success(c, http.StatusOK, paginated, &meta)
}

func (h *Handler) AdminGetById(c *gin.Context) {
	ctx := c.Request.Context()
	targetID := c.Param("id")

	resp, err := h.service.AdminGetByID(ctx, targetID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	actorID := getActorID(c)

	// Approval notes are optional, so an empty body is fine.
	var req ApproveLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.logger.Warn("http approve leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Approve(ctx, actorID, id, req.AdminNotes)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	actorID := getActorID(c)

	var req RejectLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http reject leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Reject(ctx, actorID, id, req.AdminNotes)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Dashboard(c *gin.Context) {
	resp, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func paginate(c *gin.Context, resp []LeaveResponse) ([]LeaveResponse, response.PaginationMeta) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	return resp[start:end], response.NewPaginationMeta(total, page, pageSize)
}
