package auth

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ticx-go/apperror"
)

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestParseBasicCredentials(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		username string
		password string
		wantErr  bool
	}{
		{
			name:     "well formed",
			header:   basicHeader("alice", "s3cret"),
			username: "alice",
			password: "s3cret",
		},
		{
			name:     "scheme is case insensitive",
			header:   "basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret")),
			username: "alice",
			password: "s3cret",
		},
		{
			name:     "empty password is accepted",
			header:   basicHeader("alice", ""),
			username: "alice",
			password: "",
		},
		{
			name:     "password may contain colons",
			header:   basicHeader("alice", "pa:ss:word"),
			username: "alice",
			password: "pa:ss:word",
		},
		{
			name:    "no space separator",
			header:  "Basicabc",
			wantErr: true,
		},
		{
			name:    "wrong scheme",
			header:  "Bearer " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret")),
			wantErr: true,
		},
		{
			name:    "payload is not base64",
			header:  "Basic !!!not-base64!!!",
			wantErr: true,
		},
		{
			name:    "decoded payload has no colon",
			header:  "Basic " + base64.StdEncoding.EncodeToString([]byte("alicepassword")),
			wantErr: true,
		},
		{
			name:    "empty username",
			header:  basicHeader("", "s3cret"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := ParseBasicCredentials(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := apperror.FromError(err)
				require.True(t, ok, "parse failures must stay inside the error taxonomy")
				assert.Equal(t, apperror.InvalidHeaderError, appErr.Type)
				assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
				assert.NotContains(t, appErr.Error(), tt.header,
					"the raw header value must not be echoed back")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, creds.Username())
			assert.Equal(t, tt.password, creds.Password())
		})
	}
}

func TestCredentialsStringRedactsPassword(t *testing.T) {
	creds, err := ParseBasicCredentials(basicHeader("alice", "hunter2"))
	require.NoError(t, err)
	assert.NotContains(t, creds.String(), "hunter2")
	assert.Contains(t, creds.String(), "alice")
}
