package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "Output")
	args := []string{"iconreel", "--quiet", "capture", "--dir", out, "--name", "Icon", "-r", "32", "--verify"}

	require.NoError(t, app.Run(args))
	require.NoError(t, app.Run(args))

	for _, name := range []string{"Icon.png", "Icon_1.png"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestCaptureCommandConfig(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "Output")
	cfgPath := filepath.Join("..", "..", "configs", "default.yaml")
	args := []string{"iconreel", "--config", cfgPath, "--quiet", "capture", "--dir", out, "-r", "8", "--use-target-name"}

	require.NoError(t, app.Run(args))
	_, err := os.Stat(filepath.Join(out, "Cube.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "Cube.png.meta.yaml"))
	assert.NoError(t, err, "default config enables the sidecar")
}

func TestCaptureCommandInvalid(t *testing.T) {
	dir := t.TempDir()
	err := app.Run([]string{"iconreel", "--quiet", "capture", "--dir", dir, "-r", "100"})
	assert.Error(t, err)

	err = app.Run([]string{"iconreel", "--quiet", "capture", "--dir", dir, "--transparent", "-f", "jpg"})
	assert.Error(t, err)
}

func TestSequenceCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "Output")
	err := app.Run([]string{
		"iconreel", "--quiet", "sequence",
		"--dir", out, "-r", "8", "-m", "orbit", "-t", "Cube",
		"--frames", "4", "--tile", "8", "-e", "sheet", "--temp", filepath.Join(dir, "frames"),
	})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "Icon_8x8.png"))
	assert.NoError(t, err)
}

func TestGridCommand(t *testing.T) {
	assert.NoError(t, app.Run([]string{"iconreel", "grid", "9"}))
	assert.Error(t, app.Run([]string{"iconreel", "grid"}))
}

func TestSelftestCommand(t *testing.T) {
	assert.NoError(t, app.Run([]string{"iconreel", "selftest", t.TempDir()}))
}
