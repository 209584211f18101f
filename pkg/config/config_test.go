package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-iconreel/pkg/capture"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/render"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	req, err := cfg.Request()
	require.NoError(t, err)
	require.NoError(t, req.Validate())
	assert.Equal(t, 128, req.Resolution)
	assert.Equal(t, imaging.PNG, req.Format)
	assert.Equal(t, "Output", req.Naming.Directory)
	assert.Equal(t, "Icon", req.Naming.BaseName)
	assert.Equal(t, "_", req.Naming.Delimiter)
	assert.Equal(t, capture.Free, req.Mode)

	assert.Equal(t, 25*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, time.Duration(0), cfg.Timeout())
}

func TestLoadShippedDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "default.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "orbit", cfg.Camera.Mode)
	assert.Equal(t, []string{ExportSheet, ExportGif}, cfg.Sequence.Exports)
	assert.Equal(t, 120*time.Second, cfg.Timeout())

	scene, err := cfg.BuildScene()
	require.NoError(t, err)
	assert.Equal(t, render.DefaultScene(), scene)
}

func TestLoadFillsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "output:\n  base_name: Thumb\n"))
	require.NoError(t, err)
	assert.Equal(t, "Thumb", cfg.Output.BaseName)
	assert.Equal(t, DefaultResolution, cfg.Output.Resolution)
	assert.Equal(t, DefaultFrameResolution, cfg.Sequence.FrameResolution)
	assert.Equal(t, DefaultEncoderBinary, cfg.Encoder.Binary)
	assert.Equal(t, PathFramesDir, cfg.Sequence.TempDir)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"resolution", "output:\n  resolution: 100\n"},
		{"format", "output:\n  format: bmp\n"},
		{"mode", "camera:\n  mode: dolly\n"},
		{"frame resolution", "sequence:\n  frame_resolution: 2\n"},
		{"export", "sequence:\n  exports: [webm]\n"},
		{"timeout", "encoder:\n  timeout_sec: -1\n"},
		{"color", "scene:\n  objects:\n    - name: A\n      color: red\n"},
		{"duplicate", "scene:\n  objects:\n    - {name: A, color: '#000000'}\n    - {name: A, color: '#000000'}\n"},
		{"bounds", "scene:\n  objects:\n    - {name: A, min: [1, 0, 0], max: [0, 1, 1], color: '#000000'}\n"},
		{"yaml", "output: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRequestExpandsHome(t *testing.T) {
	home, err := homedir.Dir()
	if err != nil {
		t.Skip("no home dir")
	}
	cfg := Default()
	cfg.Output.Directory = "~/icons"
	req, err := cfg.Request()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "icons"), req.Naming.Directory)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#e67e22")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{230, 126, 34, 255}, c)

	c, err = ParseColor("00000080")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 0, 0, 128}, c)

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}
