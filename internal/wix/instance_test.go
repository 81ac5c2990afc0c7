package wix

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInstanceViaTokenInfo(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/token-info", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc.def", body["token"], "Bearer prefix must be stripped")
		writeJSON(w, http.StatusOK, map[string]any{"active": true, "instanceId": "inst-42"})
	})

	id, err := c.ResolveInstance(context.Background(), "Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "inst-42", id)
}

func TestResolveInstanceFallsBackToSignedInstance(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid token"})
	})

	id, err := c.ResolveInstance(context.Background(), SignInstance("secret", "inst-7"))
	require.NoError(t, err)
	assert.Equal(t, "inst-7", id)
}

func TestResolveInstanceRejects(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
	})

	for name, token := range map[string]string{
		"empty":        "",
		"bearer only":  "Bearer ",
		"wrong secret": SignInstance("other-secret", "inst-7"),
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.ResolveInstance(context.Background(), token)
			assert.ErrorIs(t, err, ErrMissingInstance)
		})
	}
}
