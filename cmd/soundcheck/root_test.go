package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClipsCommand(t *testing.T) {
	out, err := run(t, "clips")
	require.NoError(t, err)
	assert.Contains(t, out, "sfx/jump")
	assert.Contains(t, out, "music/forest_day")
	assert.NotContains(t, out, "error:")
}

func TestPlaylistsCommand(t *testing.T) {
	out, err := run(t, "playlists")
	require.NoError(t, err)
	assert.Contains(t, out, "forest (default):")
	assert.Contains(t, out, "ok      music/cave_drip")
	assert.NotContains(t, out, "MISSING")
}

func TestRotateCommand(t *testing.T) {
	out, err := run(t, "rotate", "--playlist", "all", "--count", "12", "--seed", "7")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12)
	var prev string
	for i, line := range lines {
		fields := strings.Fields(line)
		require.Len(t, fields, 3, line)
		if i == 0 {
			assert.Equal(t, "0s", fields[1])
		}
		assert.NotEqual(t, prev, fields[2], "consecutive repeat in %q", out)
		prev = fields[2]
	}

	again, err := run(t, "rotate", "--playlist", "all", "--count", "12", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, out, again, "same seed must give the same order")
}

func TestRotateSingleTrackRepeats(t *testing.T) {
	out, err := run(t, "rotate", "--playlist", "cave", "--count", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "music/cave_drip"))
}

func TestRotateErrors(t *testing.T) {
	_, err := run(t, "rotate", "--playlist", "nope")
	assert.ErrorContains(t, err, "unknown playlist")

	_, err = run(t, "rotate", "--count", "0")
	assert.ErrorContains(t, err, "--count")
}

func TestInvalidSampleRateFlag(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "soundcheck.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("sample_rate: 22050\n"), 0644))

	out, err := run(t, "--config", cfg, "--sample-rate", "100", "playlists")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_rate")
	assert.NotContains(t, out, "ok")
}
