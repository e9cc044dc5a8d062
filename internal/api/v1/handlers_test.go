package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/auth"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/cache"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/conversation"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/template"
)

type apiEnv struct {
	engine        *gin.Engine
	requests      *repository.MemoryRequestRepository
	approvals     *repository.MemoryApprovalRepository
	conversations *repository.MemoryConversationRepository
	history       *repository.MemoryHistoryRepository
	users         *repository.MemoryUserRepository
	templates     *template.Registry
	jwt           *auth.JWTManager
	workflow      *approval.Engine
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &apiEnv{
		requests:      repository.NewMemoryRequestRepository(),
		approvals:     repository.NewMemoryApprovalRepository(),
		conversations: repository.NewMemoryConversationRepository(),
		history:       repository.NewMemoryHistoryRepository(),
		users:         repository.NewMemoryUserRepository(),
		templates:     template.NewRegistry(),
		jwt:           auth.NewJWTManager("test-secret", time.Hour),
	}
	env.approvals.AttachRequests(env.requests)
	env.workflow = approval.NewEngine(
		env.approvals, env.requests, env.conversations, env.history,
		approval.WithChainSource(env.templates),
	)

	router := NewAPIRouter(Deps{
		Requests:      env.requests,
		Approvals:     env.approvals,
		Conversations: env.conversations,
		History:       env.history,
		Users:         env.users,
		Engine:        env.workflow,
		Templates:     env.templates,
		Tracker:       conversation.NewTracker(cache.NewMemoryWatermarkStore()),
		JWT:           env.jwt,
	})

	env.engine = gin.New()
	router.RegisterRoutes(env.engine.Group("/api/v1"))
	return env
}

func (env *apiEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := env.jwt.Generate(user)
	require.NoError(t, err)
	return token
}

func (env *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

var approverUser = &models.User{
	ID: "u-alice", Login: "alice", Email: "alice@example.com",
	FirstName: "Alice", LastName: "Reyes", Role: models.RoleTechnician, ValidID: 1,
}

func seedApproval(t *testing.T, env *apiEnv, status string) *models.ApprovalRecord {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	req := &models.Request{
		ID: uuid.NewString(), Subject: "Laptop replacement",
		RequesterID: "u-carla", RequesterName: "Carla Diaz",
		Status: models.RequestStatusForApproval, ApprovalStatus: "Pending Approval",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, env.requests.Create(ctx, req))

	rec := &models.ApprovalRecord{
		ID: uuid.NewString(), RequestID: req.ID,
		Level: 1, LevelName: "Manager Approval",
		ApproverID: approverUser.ID, ApproverEmail: approverUser.Email, ApproverName: "Alice Reyes",
		Status: status, SentOn: &now,
	}
	require.NoError(t, env.approvals.Create(ctx, rec))
	return rec
}

func TestRejectWithoutCommentFailsBeforeStore(t *testing.T) {
	env := newAPIEnv(t)
	rec := seedApproval(t, env, "Pending Approval")
	token := env.tokenFor(t, approverUser)

	w := env.do(t, http.MethodPost, "/api/v1/approvals/action", token, gin.H{
		"approval_id": rec.ID,
		"action":      "reject",
		"comments":    "   ",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "approval:comment_required")

	stored, err := env.approvals.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pending Approval", stored.Status)
	assert.Nil(t, stored.ActedOn)
}

func TestApproveActionUpdatesRecord(t *testing.T) {
	env := newAPIEnv(t)
	rec := seedApproval(t, env, "Pending Approval")
	token := env.tokenFor(t, approverUser)

	w := env.do(t, http.MethodPost, "/api/v1/approvals/action", token, gin.H{
		"approval_id": rec.ID,
		"action":      "approve",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	stored, err := env.approvals.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, approval.NormalizeStatus(stored.Status))
	assert.NotNil(t, stored.ActedOn)
}

func TestActionOnDecidedRecordConflicts(t *testing.T) {
	env := newAPIEnv(t)
	rec := seedApproval(t, env, "Approved")
	token := env.tokenFor(t, approverUser)

	w := env.do(t, http.MethodPost, "/api/v1/approvals/action", token, gin.H{
		"approval_id": rec.ID,
		"action":      "approve",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "approval:invalid_transition")
}

func TestUnknownActionRejected(t *testing.T) {
	env := newAPIEnv(t)
	rec := seedApproval(t, env, "Pending Approval")
	token := env.tokenFor(t, approverUser)

	w := env.do(t, http.MethodPost, "/api/v1/approvals/action", token, gin.H{
		"approval_id": rec.ID,
		"action":      "escalate",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "approval:unknown_action")
}

func TestPendingApprovalsRequiresAuth(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/approvals/pending", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPendingApprovalsListsSeededRecord(t *testing.T) {
	env := newAPIEnv(t)
	rec := seedApproval(t, env, "Pending Approval")
	token := env.tokenFor(t, approverUser)

	w := env.do(t, http.MethodGet, "/api/v1/approvals/pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), rec.ID)
	assert.Contains(t, w.Body.String(), "Laptop replacement")
}

func TestLoginIssuesToken(t *testing.T) {
	env := newAPIEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID: "u-1", Login: "carla", Email: "carla@example.com",
		Password: string(hash), Role: models.RoleRequester, ValidID: 1,
	}
	require.NoError(t, env.users.Create(context.Background(), user))

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"login": "carla", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"login": "carla", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRequestInitializesChain(t *testing.T) {
	env := newAPIEnv(t)
	require.NoError(t, env.templates.Register(&models.FormTemplate{
		ID:   "laptop-request",
		Name: "Laptop Replacement",
		ApprovalChain: []models.ApprovalLevelDef{
			{Level: 1, LevelName: "Manager Approval", Approvers: []models.ApproverRef{
				{ID: "u-alice", Email: "alice@example.com", Name: "Alice Reyes"},
			}},
		},
	}))
	token := env.tokenFor(t, &models.User{
		ID: "u-carla", Login: "carla", Email: "carla@example.com",
		FirstName: "Carla", LastName: "Diaz", Role: models.RoleRequester, ValidID: 1,
	})

	w := env.do(t, http.MethodPost, "/api/v1/requests", token, gin.H{
		"subject":     "Laptop replacement",
		"template_id": "laptop-request",
		"form_data":   gin.H{"model": "XPS 13"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			Request models.Request `json:"request"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RequestStatusForApproval, resp.Data.Request.Status)

	records, err := env.approvals.ListByRequest(context.Background(), resp.Data.Request.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u-alice", records[0].ApproverID)
	assert.NotNil(t, records[0].SentOn)
}

func TestMarkThreadReadClearsUnread(t *testing.T) {
	env := newAPIEnv(t)
	rec := seedApproval(t, env, "Pending Approval")
	token := env.tokenFor(t, approverUser)

	entry := &models.ConversationEntry{
		ID: uuid.NewString(), RequestID: rec.RequestID, ApprovalID: rec.ID,
		Type: models.EntryTypeApprover, Author: "Bob Tan",
		Message: "please attach a quote", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, env.conversations.Append(context.Background(), entry))

	type unreadResp struct {
		Data struct {
			Unread int `json:"unread"`
		} `json:"data"`
	}

	path := fmt.Sprintf("/api/v1/approvals/%s/conversations", rec.ID)
	w := env.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before unreadResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))
	assert.Equal(t, 1, before.Data.Unread)

	w = env.do(t, http.MethodPost, path+"/mark-read", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after unreadResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Equal(t, 0, after.Data.Unread)
}
