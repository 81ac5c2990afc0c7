package wix

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeWix serves the token endpoint and delegates everything else to api
type fakeWix struct {
	tokenCalls atomic.Int32
	api        http.HandlerFunc
}

func (f *fakeWix) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/oauth2/token" {
		f.tokenCalls.Add(1)
		var req tokenRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.ClientSecret != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad client"})
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: "tok-" + req.InstanceID,
			TokenType:   "Bearer",
			ExpiresIn:   14400,
		})
		return
	}
	if f.api == nil {
		http.NotFound(w, r)
		return
	}
	f.api(w, r)
}

func newTestClient(t *testing.T, api http.HandlerFunc) (*Client, *fakeWix) {
	t.Helper()
	fake := &fakeWix{api: api}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{AppID: "app", AppSecret: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	return c, fake
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{AppID: "app"})
	assert.Error(t, err)

	_, err = NewClient(Config{AppID: "app", AppSecret: "s", PublicKey: "not a pem"})
	assert.Error(t, err)
}

func TestGetMemberUsesAppToken(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-inst-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/members/v1/members/m-1", r.URL.Path)
		assert.Equal(t, "FULL", r.URL.Query().Get("fieldsets"))
		writeJSON(w, http.StatusOK, map[string]any{
			"member": map[string]any{
				"id":         "m-1",
				"loginEmail": "Jane@Example.com",
				"profile":    map[string]any{"nickname": "jane", "photo": map[string]any{"url": "  "}},
			},
		})
	})

	api := c.ForInstance("inst-1")
	m, err := api.GetMember(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", m.ID)
	assert.Equal(t, "Jane@Example.com", m.Email())
	assert.False(t, m.HasPhoto())
	assert.Equal(t, "jane", m.DisplayName())

	_, err = api.GetMember(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.tokenCalls.Load(), "token should be reused until expiry")
}

func TestTokenSourceIsPerInstance(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"member": map[string]any{"id": "x"}})
	})

	_, err := c.ForInstance("a").GetMember(context.Background(), "x")
	require.NoError(t, err)
	_, err = c.ForInstance("b").GetMember(context.Background(), "x")
	require.NoError(t, err)
	_, err = c.ForInstance("a").GetMember(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, int32(2), fake.tokenCalls.Load())
}

func TestTokenSourceCacheIsBounded(t *testing.T) {
	fake := &fakeWix{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{AppID: "app", AppSecret: "secret", BaseURL: srv.URL, MaxTokenSources: 2})
	require.NoError(t, err)

	first := c.tokenSource("inst-1")
	c.tokenSource("inst-2")
	assert.Same(t, first, c.tokenSource("inst-1"), "a cached site is reused")

	c.tokenSource("inst-3")
	assert.Len(t, c.sources, 2)
	assert.Contains(t, c.sources, "inst-1")
	assert.Contains(t, c.sources, "inst-3")
	assert.NotContains(t, c.sources, "inst-2", "least recently used site is evicted")

	tok, err := c.tokenSource("inst-2").Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-inst-2", tok.AccessToken)
	assert.Len(t, c.sources, 2)
}

func TestNewClientDefaultsTokenCacheSize(t *testing.T) {
	c, err := NewClient(Config{AppID: "app", AppSecret: "secret"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTokenSources, c.cfg.MaxTokenSources)
}

func TestTokenFailureSurfaces(t *testing.T) {
	c, _ := newTestClient(t, nil)
	c.cfg.AppSecret = "wrong"

	_, err := c.ForInstance("inst").GetMember(context.Background(), "m")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, err.Error(), "bad client")
}

func TestAPIErrorMapping(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message": "Member not found",
			"details": map[string]any{"applicationError": map[string]any{"code": "MEMBER_NOT_FOUND"}},
		})
	})

	_, err := c.ForInstance("inst").GetMember(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "wix get member: 404 Member not found", apiErr.Error())
}

func TestListAllMembersPaginates(t *testing.T) {
	total := MembersPageSize + 3
	var offsets []int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("paging.limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("paging.offset"))
		offsets = append(offsets, offset)

		var members []map[string]any
		for i := offset; i < total && i < offset+limit; i++ {
			members = append(members, map[string]any{"id": strconv.Itoa(i)})
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members})
	})

	all, err := c.ForInstance("inst").ListAllMembers(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, total)
	assert.Equal(t, []int{0, MembersPageSize}, offsets)
}

type endlessPager struct{ calls int }

func (p *endlessPager) ListMembers(_ context.Context, limit, _ int) ([]Member, error) {
	p.calls++
	return make([]Member, limit), nil
}

func TestCollectMembersSafetyStop(t *testing.T) {
	pager := &endlessPager{}
	all, err := CollectMembers(context.Background(), pager, MembersPageSize)
	require.NoError(t, err)

	// offsets 0..100000 inclusive are fetched, then the offset passes the limit
	assert.Equal(t, 101, pager.calls)
	assert.Len(t, all, 101*MembersPageSize)
}

func TestUpdateMemberPhotoBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/members/v1/members/m-9", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t,
			`{"member":{"profile":{"photo":{"id":"f1","url":"https://img","height":200,"width":200,"offsetX":0,"offsetY":0}}}}`,
			string(raw))
		writeJSON(w, http.StatusOK, map[string]any{"member": map[string]any{"id": "m-9"}})
	})

	zero := 0
	_, err := c.ForInstance("inst").UpdateMemberPhoto(context.Background(), "m-9", Photo{
		ID: "f1", URL: "https://img", Height: 200, Width: 200, OffsetX: &zero, OffsetY: &zero,
	})
	require.NoError(t, err)
}

func TestBlockMember(t *testing.T) {
	var called bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/members/v1/members/m-2/block", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	require.NoError(t, c.ForInstance("inst").BlockMember(context.Background(), "m-2"))
	assert.True(t, called)
}

func TestImportImage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/site-media/v1/files/import", r.URL.Path)
		var req importFileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://www.gravatar.com/avatar/abc", req.URL)
		assert.Equal(t, "IMAGE", req.MediaType)
		assert.Equal(t, "image/jpeg", req.MimeType)
		writeJSON(w, http.StatusOK, map[string]any{"file": map[string]any{"id": "f-1", "url": "https://static.wixstatic.com/f-1"}})
	})

	f, err := c.ForInstance("inst").ImportImage(context.Background(), "https://www.gravatar.com/avatar/abc")
	require.NoError(t, err)
	assert.Equal(t, "f-1", f.ID)
	assert.Equal(t, "https://static.wixstatic.com/f-1", f.URL)
}

func TestSendMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inbox/v2/messages", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"conversationId": "conv-1",
			"message": {
				"direction": "BUSINESS_TO_PARTICIPANT",
				"visibility": "BUSINESS",
				"content": {"basic": {"items": [{"text": "hello"}]}}
			}
		}`, string(raw))
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	require.NoError(t, c.ForInstance("inst").SendMessage(context.Background(), "conv-1", "hello"))
}

func TestGetAppInstance(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/v1/instance", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"instance": map[string]any{"instanceId": "inst", "appName": "Guard"},
			"site":     map[string]any{"siteDisplayName": "My Site", "ownerEmail": "owner@site.com"},
		})
	})

	inst, err := c.ForInstance("inst").GetAppInstance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "owner@site.com", inst.OwnerEmail)
	assert.Equal(t, "My Site", inst.SiteName)
}

func TestMemberAcceptsUnderscoreID(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"abc","contact":{"emails":["","a@b.co"]},"profile":{"slug":"abc-slug"}}`), &m))
	assert.Equal(t, "abc", m.ID)
	assert.Equal(t, "a@b.co", m.Email())
	assert.Equal(t, "abc-slug", m.DisplayName())
}
