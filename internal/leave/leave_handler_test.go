package leave_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SeptianSamdani/leave-management-api/internal/leave"
	leaveerrors "github.com/SeptianSamdani/leave-management-api/internal/leave/errors"
	"github.com/SeptianSamdani/leave-management-api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveService struct {
	createFn         func(ctx context.Context, userID string, req leave.CreateLeaveRequest, attachment *storage.Upload) (leave.LeaveResponse, error)
	getAllForUserFn  func(ctx context.Context, userID string) ([]leave.LeaveResponse, error)
	getByIDForUserFn func(ctx context.Context, userID, id string) (leave.LeaveResponse, error)
	cancelFn         func(ctx context.Context, userID, id string) error
	statisticsFn     func(ctx context.Context, userID string) (leave.StatisticsResponse, error)
	adminGetAllFn    func(ctx context.Context, q leave.AdminListQuery) ([]leave.LeaveResponse, error)
	adminGetByIDFn   func(ctx context.Context, id string) (leave.LeaveResponse, error)
	approveFn        func(ctx context.Context, adminID, id string, notes *string) (leave.LeaveResponse, error)
	rejectFn         func(ctx context.Context, adminID, id, notes string) (leave.LeaveResponse, error)
	dashboardFn      func(ctx context.Context) (leave.DashboardResponse, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, userID string, req leave.CreateLeaveRequest, attachment *storage.Upload) (leave.LeaveResponse, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, req, attachment)
	}
	return leave.LeaveResponse{}, nil
}

func (f *fakeLeaveService) GetAllForUser(ctx context.Context, userID string) ([]leave.LeaveResponse, error) {
	if f.getAllForUserFn != nil {
		return f.getAllForUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeLeaveService) GetByIDForUser(ctx context.Context, userID, id string) (leave.LeaveResponse, error) {
	if f.getByIDForUserFn != nil {
		return f.getByIDForUserFn(ctx, userID, id)
	}
	return leave.LeaveResponse{}, nil
}

func (f *fakeLeaveService) Cancel(ctx context.Context, userID, id string) error {
	if f.cancelFn != nil {
		return f.cancelFn(ctx, userID, id)
	}
	return nil
}

func (f *fakeLeaveService) Statistics(ctx context.Context, userID string) (leave.StatisticsResponse, error) {
	if f.statisticsFn != nil {
		return f.statisticsFn(ctx, userID)
	}
	return leave.StatisticsResponse{}, nil
}

func (f *fakeLeaveService) AdminGetAll(ctx context.Context, q leave.AdminListQuery) ([]leave.LeaveResponse, error) {
	if f.adminGetAllFn != nil {
		return f.adminGetAllFn(ctx, q)
	}
	return nil, nil
}

func (f *fakeLeaveService) AdminGetByID(ctx context.Context, id string) (leave.LeaveResponse, error) {
	if f.adminGetByIDFn != nil {
		return f.adminGetByIDFn(ctx, id)
	}
	return leave.LeaveResponse{}, nil
}

func (f *fakeLeaveService) Approve(ctx context.Context, adminID, id string, notes *string) (leave.LeaveResponse, error) {
	if f.approveFn != nil {
		return f.approveFn(ctx, adminID, id, notes)
	}
	return leave.LeaveResponse{}, nil
}

func (f *fakeLeaveService) Reject(ctx context.Context, adminID, id, notes string) (leave.LeaveResponse, error) {
	if f.rejectFn != nil {
		return f.rejectFn(ctx, adminID, id, notes)
	}
	return leave.LeaveResponse{}, nil
}

func (f *fakeLeaveService) Dashboard(ctx context.Context) (leave.DashboardResponse, error) {
	if f.dashboardFn != nil {
		return f.dashboardFn(ctx)
	}
	return leave.DashboardResponse{}, nil
}

func setupLeaveRouter(svc leave.Service, userID string) (*gin.Engine, *leave.Handler) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id_validated", userID)
		c.Next()
	})
	handler := leave.NewHandler(svc)
	return router, handler
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		assert.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := writer.CreateFormFile(fileField, filename)
		assert.NoError(t, err)
		_, err = fw.Write(fileContent)
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func createFields() map[string]string {
	return map[string]string{
		"start_date": "2026-03-02",
		"end_date":   "2026-03-06",
		"reason":     "Family wedding out of town",
	}
}

func TestLeaveHandler_Create(t *testing.T) {
	userID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveService{}
		svc.createFn = func(ctx context.Context, uid string, req leave.CreateLeaveRequest, attachment *storage.Upload) (leave.LeaveResponse, error) {
			assert.Equal(t, userID, uid)
			assert.Equal(t, "2026-03-02", req.StartDate)
			if assert.NotNil(t, attachment) {
				assert.Equal(t, "note.pdf", attachment.Filename)
			}
			return leave.LeaveResponse{ID: uuid.New().String(), Status: leave.StatusPending, TotalDays: 5}, nil
		}

		router, handler := setupLeaveRouter(svc, userID)
		router.POST("/leaves", handler.Create)

		body, contentType := multipartBody(t, createFields(), "attachment", "note.pdf", []byte("%PDF-1.4"))
		req := httptest.NewRequest(http.MethodPost, "/leaves", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var res map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, true, res["ok"])
		assert.Equal(t, float64(5), res["data"].(map[string]any)["total_days"])
	})

	t.Run("negative missing attachment", func(t *testing.T) {
		svc := &fakeLeaveService{}
		svc.createFn = func(ctx context.Context, uid string, req leave.CreateLeaveRequest, attachment *storage.Upload) (leave.LeaveResponse, error) {
			t.Fatal("service must not be called without an attachment")
			return leave.LeaveResponse{}, nil
		}

		router, handler := setupLeaveRouter(svc, userID)
		router.POST("/leaves", handler.Create)

		body, contentType := multipartBody(t, createFields(), "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/leaves", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "attachment is required")
	})

	t.Run("negative disallowed extension", func(t *testing.T) {
		svc := &fakeLeaveService{}
		router, handler := setupLeaveRouter(svc, userID)
		router.POST("/leaves", handler.Create)

		body, contentType := multipartBody(t, createFields(), "attachment", "malware.exe", []byte("MZ"))
		req := httptest.NewRequest(http.MethodPost, "/leaves", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "pdf, jpg, jpeg or png")
	})

	t.Run("negative reason too short", func(t *testing.T) {
		svc := &fakeLeaveService{}
		router, handler := setupLeaveRouter(svc, userID)
		router.POST("/leaves", handler.Create)

		fields := createFields()
		fields["reason"] = "short"
		body, contentType := multipartBody(t, fields, "attachment", "note.pdf", []byte("%PDF-1.4"))
		req := httptest.NewRequest(http.MethodPost, "/leaves", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative overlap maps to conflict", func(t *testing.T) {
		svc := &fakeLeaveService{}
		svc.createFn = func(ctx context.Context, uid string, req leave.CreateLeaveRequest, attachment *storage.Upload) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, leaveerrors.ErrLeaveOverlap
		}

		router, handler := setupLeaveRouter(svc, userID)
		router.POST("/leaves", handler.Create)

		body, contentType := multipartBody(t, createFields(), "attachment", "note.pdf", []byte("%PDF-1.4"))
		req := httptest.NewRequest(http.MethodPost, "/leaves", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "CONFLICT")
	})
}

func TestLeaveHandler_GetAll(t *testing.T) {
	userID := uuid.New().String()

	t.Run("success paginates in memory", func(t *testing.T) {
		svc := &fakeLeaveService{}
		svc.getAllForUserFn = func(ctx context.Context, uid string) ([]leave.LeaveResponse, error) {
			items := make([]leave.LeaveResponse, 15)
			for i := range items {
				items[i] = leave.LeaveResponse{ID: uuid.New().String()}
			}
			return items, nil
		}

		router, handler := setupLeaveRouter(svc, userID)
		router.GET("/leaves", handler.GetAll)

		req := httptest.NewRequest(http.MethodGet, "/leaves?page=2&page_size=10", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var res map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Len(t, res["data"].([]any), 5)
		meta := res["meta"].(map[string]any)
		assert.Equal(t, float64(15), meta["total"])
		assert.Equal(t, float64(2), meta["totalPages"])
	})
}

func TestLeaveHandler_Approve(t *testing.T) {
	adminID := uuid.New().String()

	t.Run("success empty body", func(t *testing.T) {
		svc := &fakeLeaveService{}
		id := uuid.New().String()
		svc.approveFn = func(ctx context.Context, aid, targetID string, notes *string) (leave.LeaveResponse, error) {
			assert.Equal(t, adminID, aid)
			assert.Equal(t, id, targetID)
			assert.Nil(t, notes)
			return leave.LeaveResponse{ID: targetID, Status: leave.StatusApproved}, nil
		}

		router, handler := setupLeaveRouter(svc, adminID)
		router.PATCH("/admin/leaves/:id/approve", handler.Approve)

		req := httptest.NewRequest(http.MethodPatch, "/admin/leaves/"+id+"/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), leave.StatusApproved)
	})

	t.Run("negative not pending maps to invalid state", func(t *testing.T) {
		svc := &fakeLeaveService{}
		svc.approveFn = func(ctx context.Context, aid, targetID string, notes *string) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, leaveerrors.ErrLeaveNotPending
		}

		router, handler := setupLeaveRouter(svc, adminID)
		router.PATCH("/admin/leaves/:id/approve", handler.Approve)

		req := httptest.NewRequest(http.MethodPatch, "/admin/leaves/"+uuid.New().String()+"/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_STATE")
	})
}

func TestLeaveHandler_Reject(t *testing.T) {
	adminID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveService{}
		id := uuid.New().String()
		svc.rejectFn = func(ctx context.Context, aid, targetID, notes string) (leave.LeaveResponse, error) {
			assert.Equal(t, "Team is understaffed that week", notes)
			return leave.LeaveResponse{ID: targetID, Status: leave.StatusRejected}, nil
		}

		router, handler := setupLeaveRouter(svc, adminID)
		router.PATCH("/admin/leaves/:id/reject", handler.Reject)

		body, _ := json.Marshal(leave.RejectLeaveRequest{AdminNotes: "Team is understaffed that week"})
		req := httptest.NewRequest(http.MethodPatch, "/admin/leaves/"+id+"/reject", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative missing notes", func(t *testing.T) {
		svc := &fakeLeaveService{}
		router, handler := setupLeaveRouter(svc, adminID)
		router.PATCH("/admin/leaves/:id/reject", handler.Reject)

		req := httptest.NewRequest(http.MethodPatch, "/admin/leaves/"+uuid.New().String()+"/reject", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLeaveHandler_Cancel(t *testing.T) {
	userID := uuid.New().String()

	t.Run("negative not owner maps to forbidden", func(t *testing.T) {
		svc := &fakeLeaveService{}
		svc.cancelFn = func(ctx context.Context, uid, id string) error {
			return leaveerrors.ErrNotRequestOwner
		}

		router, handler := setupLeaveRouter(svc, userID)
		router.DELETE("/leaves/:id", handler.Cancel)

		req := httptest.NewRequest(http.MethodDelete, "/leaves/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
