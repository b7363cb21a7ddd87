package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthCallbackRequest_ExternalIDForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ExternalID
	}{
		{name: "number", body: `{"github_id": 12345, "username": "octo"}`, want: "12345"},
		{name: "string", body: `{"github_id": "abc-1", "username": "octo"}`, want: "abc-1"},
		{name: "null", body: `{"github_id": null, "username": "octo"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req OAuthCallbackRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.GithubID)
		})
	}
}

func TestOAuthCallbackRequest_RejectsObjectID(t *testing.T) {
	var req OAuthCallbackRequest
	err := json.Unmarshal([]byte(`{"github_id": {"id": 1}, "username": "octo"}`), &req)
	assert.Error(t, err)
}

func TestLoginRequest_LoginIdentifier(t *testing.T) {
	assert.Equal(t, "a", LoginRequest{Identifier: "a", Username: "b"}.LoginIdentifier())
	assert.Equal(t, "b", LoginRequest{Username: "b", Email: "c@x.io"}.LoginIdentifier())
	assert.Equal(t, "c@x.io", LoginRequest{Email: "c@x.io"}.LoginIdentifier())
	assert.Empty(t, LoginRequest{}.LoginIdentifier())
}
