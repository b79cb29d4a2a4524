package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenofnine/meeting-note-sync/internal/auth"
)

func TestAuthInitSealsCredentials(t *testing.T) {
	t.Setenv("MNS_PASSPHRASE", "hunter2")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"auth", "init", "--token", "tok-abc", "--calendar-id", "primary", "--output", path})
	require.NoError(t, cmd.Execute())

	creds, err := auth.Store{Path: path}.Load("hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", creds.APIToken)
	assert.Equal(t, "primary", creds.CalendarID)
}

func TestAuthInitRequiresPassphrase(t *testing.T) {
	t.Setenv("MNS_PASSPHRASE", "")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"auth", "init", "--token", "tok-abc", "--output", path})
	require.Error(t, cmd.Execute())
}

func TestAuthInitRequiresToken(t *testing.T) {
	t.Setenv("MNS_PASSPHRASE", "hunter2")
	t.Setenv("MNS_API_TOKEN", "")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"auth", "init", "--output", filepath.Join(t.TempDir(), "c.enc")})
	require.Error(t, cmd.Execute())
}
