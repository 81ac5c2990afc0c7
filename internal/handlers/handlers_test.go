package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/certifiedcode/memberguard/internal/cache"
	"github.com/certifiedcode/memberguard/internal/emailcheck"
	"github.com/certifiedcode/memberguard/internal/models"
	"github.com/certifiedcode/memberguard/internal/repository"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/certifiedcode/memberguard/internal/wix"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testInstance = "inst-1"

type stubWebhooks struct {
	bodies [][]byte
	err    error
}

func (s *stubWebhooks) HandleWebhook(_ context.Context, body []byte) (string, error) {
	s.bodies = append(s.bodies, body)
	return "skipped", s.err
}

type stubEmails struct{}

func (stubEmails) Check(_ context.Context, emailOrDomain string) emailcheck.Result {
	domain := emailcheck.DomainOf(emailOrDomain)
	return emailcheck.Result{IsFake: domain == "mailinator.com", Domain: domain}
}

type stubAlerts struct {
	sent bool
	err  error
	got  []string
}

func (s *stubAlerts) SendFakeMemberAlert(_ context.Context, memberEmail, adminEmail string) (bool, error) {
	s.got = append(s.got, memberEmail, adminEmail)
	return s.sent, s.err
}

// HandlersTestSuite drives the handlers through a gin router backed by
// miniredis, in-memory SQLite and the Wix mock.
type HandlersTestSuite struct {
	suite.Suite
	router   *gin.Engine
	handlers *Handlers
	instance *wix.MockInstance
	mr       *miniredis.Miniredis
	store    *toggles.Store
	repo     repository.ActivityRepository
	webhooks *stubWebhooks
	alerts   *stubAlerts
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.mr = miniredis.RunT(s.T())
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: s.mr.Addr()}))
	s.T().Cleanup(func() { _ = rc.Close() })
	s.store = toggles.NewStore(rc)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { _ = sqlDB.Close() })
	s.Require().NoError(db.AutoMigrate(&models.Activity{}))
	s.repo = repository.NewActivityRepository(db)

	s.instance = &wix.MockInstance{}
	s.webhooks = &stubWebhooks{}
	s.alerts = &stubAlerts{sent: true}

	s.handlers = NewHandlers(&wix.MockPlatform{Instance: s.instance}, s.store)
	s.handlers.SetWebhookProcessor(s.webhooks)
	s.handlers.SetEmailChecker(stubEmails{})
	s.handlers.SetAlertSender(s.alerts)
	s.handlers.SetActivityRepository(s.repo)

	s.router = gin.New()
	s.setupRoutes()
}

func (s *HandlersTestSuite) setupRoutes() {
	withInstance := func(c *gin.Context) {
		c.Set(util.InstanceIDKey, testInstance)
		c.Next()
	}

	api := s.router.Group("/api")
	api.POST("/webhook", s.handlers.Webhook)
	api.GET("/check-email", s.handlers.CheckEmail)
	api.POST("/sendpulse-email", s.handlers.SendFakeMemberAlert)
	api.GET("/health", Health)
	api.GET("/toggle-state", withInstance, s.handlers.GetToggleState)
	api.POST("/toggle-state", withInstance, s.handlers.SetToggleState)
	api.GET("/members", withInstance, s.handlers.ListMembers)
	api.POST("/bulk-update-avatars", withInstance, s.handlers.BulkUpdateAvatars)
	api.GET("/activity", withInstance, s.handlers.GetActivity)
	api.GET("/no-instance", s.handlers.GetToggleState)
}

func (s *HandlersTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		s.Require().NoError(json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *HandlersTestSuite) TestToggleRoundTrip() {
	w := s.do(http.MethodGet, "/api/toggle-state", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"isEnabled":false}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/toggle-state", map[string]any{"isEnabled": true})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"success":true,"isEnabled":true}`, w.Body.String())

	v, err := s.mr.Get("gravatar-auto-populate-toggle:" + testInstance)
	s.Require().NoError(err)
	s.Equal("true", v)

	w = s.do(http.MethodGet, "/api/toggle-state?feature=gravatar", nil)
	s.JSONEq(`{"isEnabled":true}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/toggle-state?feature=fake-email-block", map[string]any{"isEnabled": true})
	s.Equal(http.StatusOK, w.Code)
	v, _ = s.mr.Get("block-fake-email-toggle:" + testInstance)
	s.Equal("true", v)
}

func (s *HandlersTestSuite) TestToggleValidation() {
	for _, body := range []interface{}{map[string]any{"isEnabled": "true"}, map[string]any{}, "not json"} {
		w := s.do(http.MethodPost, "/api/toggle-state", body)
		s.Equal(http.StatusBadRequest, w.Code)
		resp := decode[map[string]any](s.T(), w)
		s.Equal("isEnabled must be a boolean", resp["error"])
	}

	w := s.do(http.MethodGet, "/api/toggle-state?feature=teleport", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/no-instance", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestToggleStoreDown() {
	s.mr.Close()
	w := s.do(http.MethodGet, "/api/toggle-state", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *HandlersTestSuite) TestListMembers() {
	email := gofakeit.Email()
	s.instance.ListMembersFunc = func(_ context.Context, limit, offset int) ([]wix.Member, error) {
		if offset > 0 {
			return nil, nil
		}
		return []wix.Member{
			{ID: "m-1", LoginEmail: email, Profile: wix.Profile{Nickname: "Ada"}},
			{ID: "m-2", Contact: wix.Contact{Emails: []string{"b@example.com"}}, Profile: wix.Profile{Slug: "bob", Photo: &wix.Photo{URL: "https://x/b.png"}}},
			{ID: "m-3", Profile: wix.Profile{Photo: &wix.Photo{URL: " "}}},
		}, nil
	}

	w := s.do(http.MethodGet, "/api/members", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	resp := decode[struct {
		Members []MemberSummary `json:"members"`
	}](s.T(), w)
	s.Require().Len(resp.Members, 3)
	s.Equal(MemberSummary{ID: "m-1", Name: "Ada", Email: email}, resp.Members[0])
	s.Equal(MemberSummary{ID: "m-2", Name: "bob", Email: "b@example.com", HasAvatar: true, AvatarURL: "https://x/b.png"}, resp.Members[1])
	s.False(resp.Members[2].HasAvatar)
	s.Equal([]string{testInstance}, s.instance.InstanceIDs)
}

func (s *HandlersTestSuite) TestListMembersUpstreamError() {
	s.instance.ListMembersFunc = func(context.Context, int, int) ([]wix.Member, error) {
		return nil, &wix.APIError{Op: "list members", Status: 403, Message: "forbidden"}
	}
	w := s.do(http.MethodGet, "/api/members", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
	resp := decode[map[string]any](s.T(), w)
	s.Contains(resp["error"], "forbidden")
}

func (s *HandlersTestSuite) TestBulkUpdateAvatars() {
	s.instance.GetMemberFunc = func(_ context.Context, id string) (*wix.Member, error) {
		if id == "no-email" {
			return &wix.Member{ID: id}, nil
		}
		return &wix.Member{ID: id, LoginEmail: id + "@example.com"}, nil
	}

	w := s.do(http.MethodPost, "/api/bulk-update-avatars", map[string]any{"memberIds": []string{"a", "no-email"}})
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"success":["a"],"failed":[{"memberId":"no-email","error":"No email found for member"}]}`, w.Body.String())

	entries, err := s.repo.Recent(context.Background(), testInstance, 10)
	s.Require().NoError(err)
	s.Len(entries, 1)

	for _, body := range []interface{}{map[string]any{"memberIds": []string{}}, map[string]any{}, map[string]any{"memberIds": "a"}} {
		w = s.do(http.MethodPost, "/api/bulk-update-avatars", body)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("memberIds must be a non-empty array", decode[map[string]any](s.T(), w)["error"])
	}
}

func (s *HandlersTestSuite) TestCheckEmail() {
	w := s.do(http.MethodGet, "/api/check-email?email=joe@mailinator.com", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("public, max-age=300", w.Header().Get("Cache-Control"))
	s.JSONEq(`{"isFake":true,"domain":"mailinator.com"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/check-email?domain=example.com", nil)
	s.JSONEq(`{"isFake":false,"domain":"example.com"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/check-email", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Missing required parameter: email or domain", decode[map[string]any](s.T(), w)["error"])
	s.Empty(w.Header().Get("Cache-Control"))
}

func (s *HandlersTestSuite) TestSendFakeMemberAlert() {
	w := s.do(http.MethodPost, "/api/sendpulse-email", map[string]any{"memberEmail": "x@mailinator.com", "adminEmail": "owner@example.com"})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"success":true,"message":"Email sent successfully"}`, w.Body.String())
	s.Equal([]string{"x@mailinator.com", "owner@example.com"}, s.alerts.got)

	s.alerts.err = errors.New("provider down")
	w = s.do(http.MethodPost, "/api/sendpulse-email", map[string]any{"memberEmail": "x@mailinator.com"})
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"success":false,"message":"Failed to send email"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/sendpulse-email", map[string]any{"adminEmail": "owner@example.com"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("memberEmail is required", decode[map[string]any](s.T(), w)["error"])
}

func (s *HandlersTestSuite) TestWebhookAlwaysAcknowledges() {
	w := s.do(http.MethodPost, "/api/webhook", "eyJhbGciOi.payload.sig")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
	s.Require().Len(s.webhooks.bodies, 1)
	s.Equal("eyJhbGciOi.payload.sig", string(s.webhooks.bodies[0]))

	s.webhooks.err = wix.ErrInvalidWebhook
	w = s.do(http.MethodPost, "/api/webhook", "garbage")
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestActivity() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Record(ctx, &models.Activity{InstanceID: testInstance, Kind: models.ActivityMemberBlocked, MemberID: "m-1"}))
	s.Require().NoError(s.repo.Record(ctx, &models.Activity{InstanceID: "other", Kind: models.ActivityAvatarSet}))

	w := s.do(http.MethodGet, "/api/activity?limit=500", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	resp := decode[struct {
		Activity []models.Activity `json:"activity"`
	}](s.T(), w)
	s.Require().Len(resp.Activity, 1)
	s.Equal(models.ActivityMemberBlocked, resp.Activity[0].Kind)
}

func (s *HandlersTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/api/health", nil)
	s.Equal(http.StatusOK, w.Code)
	resp := decode[map[string]any](s.T(), w)
	s.Equal("OK", resp["status"])
	s.NotEmpty(resp["timestamp"])
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWebhookBodyReadFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(&wix.MockPlatform{}, nil)
	r := gin.New()
	r.POST("/api/webhook", h.Webhook)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook", errReader{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Webhook error: connection reset"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", Readiness(map[string]DependencyCheck{
		"redis":    func(context.Context) error { return nil },
		"database": func(context.Context) error { return errors.New("down") },
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, map[string]any{"redis": "ok", "database": "down"}, resp["dependencies"])
}
