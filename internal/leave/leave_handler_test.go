package leave_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"breakly/internal/leave"
	leaveerrors "breakly/internal/leave/errors"
	mock_leave "breakly/internal/leave/mock"
	"breakly/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func setupLeaveHandlerTest(t *testing.T, userID string) (*gin.Engine, *mock_leave.MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	svc := mock_leave.NewMockService(ctrl)
	h := leave.NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.KeyUserID, userID)
		c.Next()
	})
	r.GET("/api/leaves", h.ListMine)
	r.POST("/api/leaves", h.Submit)
	r.GET("/api/leaves/pending", h.ListPending)
	r.PUT("/api/leaves/approve", h.Decide)
	return r, svc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLeaveHandler_Submit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, svc := setupLeaveHandlerTest(t, "emp-1")
		svc.EXPECT().
			Submit(gomock.Any(), "emp-1", leave.CreateLeaveRequest{
				Type: "annual", StartDate: "2026-03-02", EndDate: "2026-03-03",
			}).
			Return(leave.LeaveResponse{ID: "l-1", Status: "pending", Days: 2}, nil)

		w := doJSON(r, http.MethodPost, "/api/leaves", map[string]string{
			"type": "annual", "start_date": "2026-03-02", "end_date": "2026-03-03",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.LeaveResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "l-1", got.ID)
		assert.Equal(t, 2, got.Days)
	})

	t.Run("negative missing fields", func(t *testing.T) {
		r, _ := setupLeaveHandlerTest(t, "emp-1")

		w := doJSON(r, http.MethodPost, "/api/leaves", map[string]string{"type": "annual"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})

	t.Run("negative invalid range", func(t *testing.T) {
		r, svc := setupLeaveHandlerTest(t, "emp-1")
		svc.EXPECT().Submit(gomock.Any(), "emp-1", gomock.Any()).
			Return(leave.LeaveResponse{}, leaveerrors.ErrInvalidDateRange)

		w := doJSON(r, http.MethodPost, "/api/leaves", map[string]string{
			"type": "annual", "start_date": "2026-03-05", "end_date": "2026-03-03",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})

	t.Run("negative unknown employee", func(t *testing.T) {
		r, svc := setupLeaveHandlerTest(t, "ghost")
		svc.EXPECT().Submit(gomock.Any(), "ghost", gomock.Any()).
			Return(leave.LeaveResponse{}, leaveerrors.ErrEmployeeNotFound)

		w := doJSON(r, http.MethodPost, "/api/leaves", map[string]string{
			"type": "annual", "start_date": "2026-03-02", "end_date": "2026-03-03",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeaveHandler_ListMine(t *testing.T) {
	r, svc := setupLeaveHandlerTest(t, "emp-1")
	svc.EXPECT().ListForEmployee(gomock.Any(), "emp-1").Return([]leave.LeaveResponse{
		{ID: "l-2"}, {ID: "l-1"},
	}, nil)

	w := doJSON(r, http.MethodGet, "/api/leaves", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []leave.LeaveResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &got))
	assert.Len(t, got, 2)
	assert.Equal(t, "l-2", got[0].ID)
}

func TestLeaveHandler_ListPending(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, svc := setupLeaveHandlerTest(t, "mgr-1")
		svc.EXPECT().ListPending(gomock.Any(), "mgr-1").Return([]leave.LeaveResponse{{ID: "l-1"}}, nil)

		w := doJSON(r, http.MethodGet, "/api/leaves/pending", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative forbidden", func(t *testing.T) {
		r, svc := setupLeaveHandlerTest(t, "emp-1")
		svc.EXPECT().ListPending(gomock.Any(), "emp-1").Return(nil, leaveerrors.ErrForbidden)

		w := doJSON(r, http.MethodGet, "/api/leaves/pending", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})
}

func TestLeaveHandler_Decide(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, svc := setupLeaveHandlerTest(t, "mgr-1")
		svc.EXPECT().
			Decide(gomock.Any(), "mgr-1", leave.DecideLeaveRequest{
				LeaveID: "l-1", Action: "reject", RejectionReason: "busy",
			}).
			Return(leave.LeaveResponse{ID: "l-1", Status: "rejected"}, nil)

		w := doJSON(r, http.MethodPut, "/api/leaves/approve", map[string]string{
			"leave_id": "l-1", "action": "reject", "rejection_reason": "busy",
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative conflict", func(t *testing.T) {
		r, svc := setupLeaveHandlerTest(t, "mgr-1")
		svc.EXPECT().Decide(gomock.Any(), "mgr-1", gomock.Any()).
			Return(leave.LeaveResponse{}, leaveerrors.ErrLeaveAlreadyDecided)

		w := doJSON(r, http.MethodPut, "/api/leaves/approve", map[string]string{
			"leave_id": "l-1", "action": "approve",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})

	t.Run("negative missing leave id", func(t *testing.T) {
		r, _ := setupLeaveHandlerTest(t, "mgr-1")

		w := doJSON(r, http.MethodPut, "/api/leaves/approve", map[string]string{"action": "approve"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
