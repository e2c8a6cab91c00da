package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

// runErr executes args and returns the command error. The named flags are
// reset afterwards so later tests see their defaults.
func runErr(t *testing.T, reset map[string]string, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		for name, value := range reset {
			if f := rootCmd.PersistentFlags().Lookup(name); f != nil {
				f.Value.Set(value)
				f.Changed = false
			}
			if f := lessonCmd.Flags().Lookup(name); f != nil {
				f.Value.Set(value)
				f.Changed = false
			}
		}
	})
	return rootCmd.Execute()
}

func TestSpeedsCommand(t *testing.T) {
	out := run(t, "speeds", "--plain")
	for _, name := range []string{"Explorer", "Builder", "large font", "streamlined layout"} {
		assert.Contains(t, out, name)
	}
}

func TestLessonCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "speedlearn.db")

	out := run(t, "lesson", "--db", db, "--plain")
	assert.Contains(t, out, "photosynthesis")
	assert.Contains(t, out, "The Water Cycle")

	out = run(t, "lesson", "photosynthesis", "--db", db, "--plain", "--speed", "2")
	assert.Contains(t, out, "How Plants Make Food")
	assert.Contains(t, out, "Builder (speed 2)")
	assert.Contains(t, out, "generated")
}

func TestSessionPersistsAcrossCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "speedlearn.db")

	out := run(t, "session", "water-cycle", "--db", db, "--plain", "--user", "ana")
	assert.Contains(t, out, "interactions over 6m0s")
	assert.Contains(t, out, "total 1")

	out = run(t, "stats", "--db", db, "--plain")
	assert.Contains(t, out, "total 1 · completed 1")
	assert.Contains(t, out, "Cache")

	out = run(t, "telemetry", "list", "--db", db, "--user", "ana")
	assert.Contains(t, out, "water-cycle")
	assert.Contains(t, out, "complete")
}

func TestTutorCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "speedlearn.db")

	out := run(t, "tutor", "hint", "solar-system", "--db", db, "--plain", "--context", "which step comes first")
	assert.Contains(t, out, "procedural hint")

	out = run(t, "tutor", "analyze", "solar-system", "--db", db, "--plain",
		"--response", "Mars", "--correct", "Mars.", "--context", "planets")
	assert.Contains(t, out, "careless")
}

func TestLessonCommand_RejectsEmptyUser(t *testing.T) {
	db := filepath.Join(t.TempDir(), "speedlearn.db")
	err := runErr(t, map[string]string{"user": "learner"},
		"lesson", "photosynthesis", "--db", db, "--plain", "--user", "")
	require.ErrorIs(t, err, errEmptyUser)
}

func TestLessonCommand_RejectsNonFiniteAdjust(t *testing.T) {
	db := filepath.Join(t.TempDir(), "speedlearn.db")
	for _, v := range []string{"NaN", "+Inf", "-Inf"} {
		err := runErr(t, map[string]string{"adjust": "0"},
			"lesson", "photosynthesis", "--db", db, "--plain", "--adjust="+v)
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "finite")
	}
}
