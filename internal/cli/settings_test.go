package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	dir := t.TempDir()
	s, err := loadSettings(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", s.Server)
	assert.Equal(t, "Local", s.Timezone)
	assert.Equal(t, filepath.Join(dir, "session.json"), s.SessionFile)

	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfg := "server: https://timesheets.example.com\ntimezone: UTC\nemployer: acme\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o600))
	t.Setenv("TIMESHEET_EMPLOYER", "globex")

	s, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://timesheets.example.com", s.Server)
	assert.Equal(t, "globex", s.Employer)

	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadSettings_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))
	_, err := loadSettings(dir)
	assert.Error(t, err)
}

func TestSettings_UnknownTimezone(t *testing.T) {
	_, err := Settings{Timezone: "Nowhere/Bogus"}.Location()
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Employee", "Hours"}, [][]string{{"bob", "8.50"}, {"alexandra", "1"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Employee")
	assert.Contains(t, lines[2], "bob")
	assert.Contains(t, lines[3], "alexandra")
}
