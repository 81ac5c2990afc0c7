package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/config"
	appconfig "github.com/certifiedcode/memberguard/internal/config"
	"github.com/certifiedcode/memberguard/internal/container"
	"github.com/certifiedcode/memberguard/internal/database"
	"github.com/certifiedcode/memberguard/internal/models"
	"github.com/certifiedcode/memberguard/internal/repository"
	"github.com/certifiedcode/memberguard/internal/server"
	"github.com/certifiedcode/memberguard/internal/wix"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type sentAlert struct {
	member, admin string
}

type stubAlerts struct {
	sent []sentAlert
	ok   bool
}

func (s *stubAlerts) SendFakeMemberAlert(_ context.Context, memberEmail, adminEmail string) (bool, error) {
	s.sent = append(s.sent, sentAlert{memberEmail, adminEmail})
	return s.ok, nil
}

// APITestSuite runs the CLI calls against a real router backed by miniredis,
// in-memory SQLite and the Wix mock
type APITestSuite struct {
	suite.Suite
	mock     *container.MockContainer
	alerts   *stubAlerts
	activity repository.ActivityRepository
	server   *httptest.Server
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	fakeMail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		domain := r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"domain": domain, "isDisposable": domain == "mailinator.com"})
	}))
	s.T().Cleanup(fakeMail.Close)

	db, err := database.Open(appconfig.DatabaseConfig{SQLitePath: "file::memory:"}, false)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.T().Cleanup(func() { _ = database.Close(db) })

	mr := miniredis.RunT(s.T())
	s.alerts = &stubAlerts{ok: true}
	s.activity = repository.NewActivityRepository(db)
	s.mock = container.NewMock(mr.Addr(), fakeMail.URL)
	s.mock.SetAlertSender(s.alerts).SetActivityRepository(s.activity)

	s.server = httptest.NewServer(server.NewRouter(s.mock.Container))
	s.T().Cleanup(s.server.Close)

	s.Require().NoError(config.Init(filepath.Join(s.T().TempDir(), "config.toml")))
	config.Set("api.base_url", s.server.URL)
	config.Set("instance.token", "dashboard-token")
	client.Reset()
	s.T().Cleanup(client.Reset)
}

func (s *APITestSuite) TestToggleRoundTrip() {
	enabled, err := GetToggle("gravatar")
	s.Require().NoError(err)
	s.False(enabled)

	enabled, err = SetToggle("fake-email-block", true)
	s.Require().NoError(err)
	s.True(enabled)

	enabled, err = GetToggle("fake-email-block")
	s.Require().NoError(err)
	s.True(enabled)
}

func (s *APITestSuite) TestUnknownFeature() {
	_, err := GetToggle("dark-mode")
	s.Require().Error(err)

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusBadRequest, apiErr.StatusCode)
}

func (s *APITestSuite) TestMissingInstanceIsUnauthorized() {
	config.Set("instance.token", "")
	client.Reset()

	_, err := ListMembers()
	s.True(IsUnauthorized(err))
}

func (s *APITestSuite) TestListMembers() {
	s.mock.Instance.ListMembersFunc = func(_ context.Context, limit, offset int) ([]wix.Member, error) {
		if offset > 0 {
			return nil, nil
		}
		return []wix.Member{
			{ID: "m-1", LoginEmail: "a@example.com"},
			{ID: "m-2", LoginEmail: "b@example.com", Profile: wix.Profile{Photo: &wix.Photo{URL: "https://img.example.com/b.png"}}},
		}, nil
	}

	members, err := ListMembers()
	s.Require().NoError(err)
	s.Len(members, 2)

	missing := MissingAvatars(members)
	s.Require().Len(missing, 1)
	s.Equal("m-1", missing[0].ID)
}

func (s *APITestSuite) TestApplyAvatars() {
	s.mock.Instance.GetMemberFunc = func(_ context.Context, id string) (*wix.Member, error) {
		if id == "no-email" {
			return &wix.Member{ID: id}, nil
		}
		return &wix.Member{ID: id, LoginEmail: id + "@example.com"}, nil
	}

	results, err := ApplyAvatars([]string{"m-1", "no-email"})
	s.Require().NoError(err)
	s.Equal([]string{"m-1"}, results.Success)
	s.Require().Len(results.Failed, 1)
	s.Equal("no-email", results.Failed[0].MemberID)
	s.Equal("No email found for member", results.Failed[0].Error)

	_, err = ApplyAvatars(nil)
	s.Error(err)
}

func (s *APITestSuite) TestCheckEmail() {
	res, err := CheckEmail("bot@mailinator.com")
	s.Require().NoError(err)
	s.True(res.IsFake)
	s.Equal("mailinator.com", res.Domain)

	res, err = CheckEmail("example.com")
	s.Require().NoError(err)
	s.False(res.IsFake)
}

func (s *APITestSuite) TestSendTestAlert() {
	msg, err := SendTestAlert("bot@mailinator.com", "owner@example.com")
	s.Require().NoError(err)
	s.Equal("Email sent successfully", msg)
	s.Equal([]sentAlert{{"bot@mailinator.com", "owner@example.com"}}, s.alerts.sent)

	s.alerts.ok = false
	_, err = SendTestAlert("bot@mailinator.com", "")
	s.EqualError(err, "Failed to send email")
}

func (s *APITestSuite) TestRecentActivity() {
	ctx := context.Background()
	s.Require().NoError(s.activity.Record(ctx, &models.Activity{InstanceID: "test-instance", Kind: models.ActivityAvatarSet, MemberID: "m-1"}))
	s.Require().NoError(s.activity.Record(ctx, &models.Activity{InstanceID: "other-instance", Kind: models.ActivityMemberBlocked, MemberID: "m-9"}))

	entries, err := RecentActivity(10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("avatar_set", entries[0].Kind)
	s.Equal("m-1", entries[0].MemberID)
}

func (s *APITestSuite) TestHealth() {
	health, err := GetHealth()
	s.Require().NoError(err)
	s.Equal("ok", health.Status)
	s.Equal("ok", health.Dependencies["redis"])
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
