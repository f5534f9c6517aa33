package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ed-orders/internal/middleware"
	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository/memory"
	"github.com/jwalitptl/ed-orders/internal/seed"
	"github.com/jwalitptl/ed-orders/internal/service/audit"
	"github.com/jwalitptl/ed-orders/internal/service/duplicate"
	"github.com/jwalitptl/ed-orders/internal/service/event"
	orderservice "github.com/jwalitptl/ed-orders/internal/service/order"
	"github.com/jwalitptl/ed-orders/internal/service/session"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	data := seed.Load(time.Now())
	svc := orderservice.NewService(orderservice.Deps{
		Drafts:   memory.NewDraftRepository(),
		Orders:   memory.NewOrderRepository(),
		Patients: memory.NewPatientRepository(data.Patients),
		Checker:  duplicate.NewService(duplicate.DefaultPolicy(), memory.NewHistoryFromResults(data.Results), nil, nil),
		Events:   event.NewService(memory.NewOutboxRepository(), nil),
		Auditor:  audit.NewService(nil),
	})

	sessions := session.NewService(time.Hour, time.Hour)
	sess, err := sessions.Create(context.Background(), &model.CreateSessionRequest{ClinicianID: "dr-chen", Name: "Dr. Chen"})
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(middleware.Session(sessions))
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return &testServer{engine: engine, token: sess.Token}
}

func (s *testServer) do(t *testing.T, method, path, body string, withSession bool) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if withSession {
		req.Header.Set(middleware.HeaderSessionToken, s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (s *testServer) createDraft(t *testing.T, body string) model.OrderDraft {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/orders/drafts", body, true)
	require.Equal(t, http.StatusCreated, code, "body: %+v", env.Error)

	var draft struct {
		ID    string           `json:"id"`
		State model.DraftState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	return model.OrderDraft{ID: draft.ID, State: draft.State}
}

func TestDraftsRequireSession(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodPost, "/api/v1/orders/drafts", `{"patient_mrn":"MRN-1001","kind":"lab","tests":["CBC"]}`, false)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCreateDraft_Validation(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/orders/drafts", `{"patient_mrn":"MRN-1001","kind":"surgery"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodPost, "/api/v1/orders/drafts", `{"patient_mrn":"MRN-1001","kind":"lab"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSubmit_CleanLabDraftPlacesOrder(t *testing.T) {
	s := newTestServer(t)
	draft := s.createDraft(t, `{"patient_mrn":"MRN-1001","kind":"lab","tests":["Lipase"]}`)

	code, env := s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/submit", "", true)
	require.Equal(t, http.StatusCreated, code)

	var sub struct {
		Draft struct {
			State model.DraftState `json:"state"`
		} `json:"draft"`
		Order struct {
			ID     string            `json:"id"`
			Kind   model.OrderKind   `json:"kind"`
			Status model.OrderStatus `json:"status"`
			Detail model.LabDetail   `json:"detail"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.Equal(t, model.DraftStateSubmitted, sub.Draft.State)
	assert.Equal(t, model.OrderKindLab, sub.Order.Kind)
	assert.Equal(t, model.OrderStatusPending, sub.Order.Status)
	assert.Equal(t, []string{"Lipase"}, sub.Order.Detail.Tests)

	code, _ = s.do(t, http.MethodGet, "/api/v1/orders/"+sub.Order.ID, "", false)
	assert.Equal(t, http.StatusOK, code)
}

func TestSubmit_DuplicateThenJustify(t *testing.T) {
	s := newTestServer(t)
	draft := s.createDraft(t, `{"patient_mrn":"MRN-1001","kind":"lab","tests":["CBC","Lipase"]}`)

	code, env := s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/submit", "", true)
	require.Equal(t, http.StatusOK, code)

	var held struct {
		Draft struct {
			State   model.DraftState       `json:"state"`
			Finding model.DuplicateFinding `json:"finding"`
		} `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &held))
	assert.Equal(t, model.DraftStateAwaitingJustification, held.Draft.State)
	assert.Equal(t, []string{"CBC"}, held.Draft.Finding.DuplicateTestNames)
	assert.Equal(t, "res-2002", held.Draft.Finding.MostRecentMatchID)

	code, _ = s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/justify", `{"justification":"  "}`, true)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/justify", `{"justification":"repeat after transfusion"}`, true)
	assert.Equal(t, http.StatusCreated, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/cancel", "", true)
	assert.Equal(t, http.StatusConflict, code)
}

func TestRedirect(t *testing.T) {
	s := newTestServer(t)
	draft := s.createDraft(t, `{"patient_mrn":"MRN-1001","kind":"lab","tests":["CBC"]}`)

	code, _ := s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/redirect", "", true)
	assert.Equal(t, http.StatusConflict, code)

	s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/submit", "", true)
	code, env := s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/redirect", "", true)
	require.Equal(t, http.StatusOK, code)

	var redirected struct {
		State      model.DraftState `json:"state"`
		RedirectTo string           `json:"redirect_to"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &redirected))
	assert.Equal(t, model.DraftStateRedirected, redirected.State)
	assert.Equal(t, "res-2002", redirected.RedirectTo)
}

func TestUpdateStatusAndList(t *testing.T) {
	s := newTestServer(t)
	draft := s.createDraft(t, `{"patient_mrn":"MRN-1003","kind":"imaging","modality":"CT","body_part":"head"}`)
	_, env := s.do(t, http.MethodPost, "/api/v1/orders/drafts/"+draft.ID+"/submit", "", true)

	var sub struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	path := "/api/v1/orders/" + sub.Order.ID + "/status"

	code, _ := s.do(t, http.MethodPut, path, `{"status":"completed"}`, true)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPut, path, `{"status":"paused"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, path, `{"status":"in-progress"}`, true)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/orders?patient=MRN-1003&kind=imaging", "", false)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Data []struct {
			ID     string            `json:"id"`
			Status model.OrderStatus `json:"status"`
		} `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, model.OrderStatusInProgress, page.Data[0].Status)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestGetOrder_NotFound(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodGet, "/api/v1/orders/ord-missing", "", false)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusNotFound, env.Error.Code)
}
