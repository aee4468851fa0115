package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-archive/internal/service"
	"github.com/noah-isme/teacher-archive/pkg/config"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "archive-store", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"migrate"},
		{"teacher", "list"},
		{"teacher", "delete"},
		{"report", "rollups"},
		{"report", "winners"},
		{"report", "distribution"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("artifacts"))
}

func TestExecuteRejectsUnknownFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"migrate", "--format", "yaml"}, &stdout, &stderr)

	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "invalid format")
}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"export"}, &stdout, &stderr)

	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), CommandErrorCode)
}

func decodeResponse(t *testing.T, raw []byte, data interface{}) CLIResponse {
	t.Helper()
	var resp CLIResponse
	if data != nil {
		resp.Data = data
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func TestArchiveCommandsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "archive.db")
	flags := []string{"--db", dbPath, "--artifacts", dir, "--format", "json"}

	var stdout, stderr bytes.Buffer
	code := Execute(append([]string{"migrate"}, flags...), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var migrated MigrateResult
	resp := decodeResponse(t, stdout.Bytes(), &migrated)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, dbPath, migrated.Database)
	assert.Len(t, migrated.Tables, 16)

	app, err := Open(context.Background(), &config.Config{
		Database:  config.DatabaseConfig{Path: dbPath, BusyTimeout: time.Second, JournalMode: "WAL"},
		Artifacts: config.ArtifactsConfig{Root: dir, MaxFileSizeBytes: 1 << 20},
	}, nil)
	require.NoError(t, err)
	teacher, err := app.Teachers.Create(context.Background(), service.CreateTeacherRequest{
		TeacherProfile: service.TeacherProfile{Name: "Li Hua", IDNumber: "11010119800101001X", TeachingSubject: "Mathematics"},
	})
	require.NoError(t, err)
	require.NoError(t, app.Close())

	stdout.Reset()
	code = Execute(append([]string{"teacher", "list", "--search", "li"}, flags...), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	var listed TeacherListResult
	decodeResponse(t, stdout.Bytes(), &listed)
	require.Len(t, listed.Teachers, 1)
	assert.Equal(t, teacher.ID, listed.Teachers[0].ID)
	assert.Equal(t, 1, listed.Pagination.TotalCount)

	stdout.Reset()
	code = Execute(append([]string{"report", "rollups", "--teacher", teacher.ID}, flags...), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), `"award_count":0`)

	stdout.Reset()
	code = Execute(append([]string{"teacher", "delete", teacher.ID}, flags...), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), teacher.ID)

	stdout.Reset()
	code = Execute(append([]string{"teacher", "delete", teacher.ID}, flags...), &stdout, &stderr)
	assert.Equal(t, ExitFailure, code)
	resp = decodeResponse(t, stdout.Bytes(), nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestTextOutputListsTeachers(t *testing.T) {
	dir := t.TempDir()
	flags := []string{"--db", filepath.Join(dir, "archive.db"), "--artifacts", dir}

	var stdout, stderr bytes.Buffer
	code := Execute(append([]string{"teacher", "list"}, flags...), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "No teachers found")

	stdout.Reset()
	code = Execute(append([]string{"report", "distribution", "age_band"}, flags...), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "60 and over")
}
