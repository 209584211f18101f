package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/1F47E/go-iconreel/pkg/capture"
	"github.com/1F47E/go-iconreel/pkg/geometry"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/namer"
	"github.com/1F47E/go-iconreel/pkg/render"
)

const (
	DefaultResolution = 128
	DefaultFormat     = "png"
	DefaultDirectory  = "Output"
	DefaultBaseName   = "Icon"
	DefaultDelimiter  = "_"
	DefaultDistance   = 3.0

	// sequence
	DefaultFrameResolution = 16
	MinFrameResolution     = 4
	MaxFrameResolution     = 360
	DefaultFrameRate       = 1
	DefaultTileWidth       = 100

	// encoder
	DefaultEncoderBinary  = "ffmpeg"
	DefaultPollIntervalMs = 25

	// Path
	PathFramesDir = "tmp/frames"
)

// Sequence exports
const (
	ExportFrames = "frames"
	ExportSheet  = "sheet"
	ExportSprite = "sprite"
	ExportGif    = "gif"
	ExportMp4    = "mp4"
	ExportAvi    = "avi"
	ExportMov    = "mov"
)

var Exports = []string{ExportFrames, ExportSheet, ExportSprite, ExportGif, ExportMp4, ExportAvi, ExportMov}

type OutputConfig struct {
	Directory  string `yaml:"directory"`
	BaseName   string `yaml:"base_name"`
	Postfix    string `yaml:"postfix"`
	Delimiter  string `yaml:"delimiter"`
	Overwrite  bool   `yaml:"overwrite"`
	Format     string `yaml:"format"`     // png or jpg
	Resolution int    `yaml:"resolution"` // square, one of capture.Resolutions
	Sidecar    bool   `yaml:"sidecar"`    // write <file>.meta.yaml
}

type CameraConfig struct {
	Mode                string     `yaml:"mode"` // free, orbit or frame
	Target              string     `yaml:"target"`
	UseTargetAsFilename bool       `yaml:"use_target_as_filename"`
	Distance            float64    `yaml:"distance"`
	HorizontalOrbit     float64    `yaml:"horizontal_orbit"`
	VerticalOrbit       float64    `yaml:"vertical_orbit"`
	Offset              [3]float64 `yaml:"offset"`
	Position            [3]float64 `yaml:"position"` // free mode
	LookAt              [3]float64 `yaml:"look_at"`  // free mode
	FOV                 float64    `yaml:"fov"`
	Unlit               bool       `yaml:"unlit"`
	Transparent         bool       `yaml:"transparent"`
	OnlyTarget          bool       `yaml:"only_target"`
}

type SequenceConfig struct {
	FrameResolution int      `yaml:"frame_resolution"` // frames per turn
	FrameRate       int      `yaml:"frame_rate"`       // gif only
	TileWidth       int      `yaml:"tile_width"`
	Exports         []string `yaml:"exports"`
	TempDir         string   `yaml:"temp_dir"`
	Workers         int      `yaml:"workers"` // 0 = one per cpu
}

type EncoderConfig struct {
	Binary         string `yaml:"binary"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
	TimeoutSec     int    `yaml:"timeout_sec"` // 0 = wait forever
	ExtraArgs      string `yaml:"extra_args"`
}

type ObjectConfig struct {
	Name  string     `yaml:"name"`
	Min   [3]float64 `yaml:"min"`
	Max   [3]float64 `yaml:"max"`
	Color string     `yaml:"color"` // #rrggbb or #rrggbbaa
}

type SceneConfig struct {
	Background string         `yaml:"background"`
	Objects    []ObjectConfig `yaml:"objects"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Config aggregates all application configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Camera   CameraConfig   `yaml:"camera"`
	Sequence SequenceConfig `yaml:"sequence"`
	Encoder  EncoderConfig  `yaml:"encoder"`
	Scene    *SceneConfig   `yaml:"scene,omitempty"` // nil = built-in scene
	Log      LogConfig      `yaml:"log"`
	Quiet    bool           `yaml:"quiet"` // no progress bar
}

// Default is the configuration used without a file.
func Default() *Config {
	cfg := &Config{
		Output: OutputConfig{
			Directory:  DefaultDirectory,
			BaseName:   DefaultBaseName,
			Delimiter:  DefaultDelimiter,
			Format:     DefaultFormat,
			Resolution: DefaultResolution,
		},
		Camera: CameraConfig{
			Mode:     "free",
			Distance: DefaultDistance,
			Position: [3]float64{0, 0.5, -3},
			LookAt:   [3]float64{0, 0.5, 0},
			FOV:      render.DefaultFOVDeg,
		},
		Sequence: SequenceConfig{
			Exports: []string{ExportSheet},
		},
	}
	cfg.fillDefaults()
	return cfg
}

// Load reads a YAML file on top of Default.
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.Output.Resolution == 0 {
		c.Output.Resolution = DefaultResolution
	}
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Camera.Distance == 0 {
		c.Camera.Distance = DefaultDistance
	}
	if c.Camera.FOV <= 0 {
		c.Camera.FOV = render.DefaultFOVDeg
	}
	if c.Sequence.FrameResolution == 0 {
		c.Sequence.FrameResolution = DefaultFrameResolution
	}
	if c.Sequence.FrameRate <= 0 {
		c.Sequence.FrameRate = DefaultFrameRate
	}
	if c.Sequence.TileWidth <= 0 {
		c.Sequence.TileWidth = DefaultTileWidth
	}
	if c.Sequence.TempDir == "" {
		c.Sequence.TempDir = PathFramesDir
	}
	if c.Encoder.Binary == "" {
		c.Encoder.Binary = DefaultEncoderBinary
	}
	if c.Encoder.PollIntervalMs <= 0 {
		c.Encoder.PollIntervalMs = DefaultPollIntervalMs
	}
}

// Validate checks the values a capture or sequence would reject later.
func (c *Config) Validate() error {
	if !capture.ValidResolution(c.Output.Resolution) {
		return fmt.Errorf("output.resolution %d is not supported", c.Output.Resolution)
	}
	if _, err := imaging.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if _, err := capture.ParseCameraMode(c.Camera.Mode); err != nil {
		return fmt.Errorf("camera.mode: %w", err)
	}
	if c.Camera.FOV >= 180 {
		return fmt.Errorf("camera.fov must be < 180, got %.2f", c.Camera.FOV)
	}
	fr := c.Sequence.FrameResolution
	if fr < MinFrameResolution || fr > MaxFrameResolution {
		return fmt.Errorf("sequence.frame_resolution must be between %d and %d, got %d", MinFrameResolution, MaxFrameResolution, fr)
	}
	for _, e := range c.Sequence.Exports {
		if !validExport(e) {
			return fmt.Errorf("sequence.exports: unknown export %q, want one of %s", e, strings.Join(Exports, ", "))
		}
	}
	if c.Sequence.Workers < 0 {
		return fmt.Errorf("sequence.workers must be >= 0, got %d", c.Sequence.Workers)
	}
	if c.Encoder.TimeoutSec < 0 {
		return fmt.Errorf("encoder.timeout_sec must be >= 0, got %d", c.Encoder.TimeoutSec)
	}
	if _, err := c.BuildScene(); err != nil {
		return err
	}
	return nil
}

func validExport(e string) bool {
	for _, v := range Exports {
		if v == e {
			return true
		}
	}
	return false
}

// Request builds the capture request from the output and camera sections.
func (c *Config) Request() (capture.Request, error) {
	format, err := imaging.ParseFormat(c.Output.Format)
	if err != nil {
		return capture.Request{}, err
	}
	mode, err := capture.ParseCameraMode(c.Camera.Mode)
	if err != nil {
		return capture.Request{}, err
	}
	dir, err := homedir.Expand(c.Output.Directory)
	if err != nil {
		return capture.Request{}, fmt.Errorf("expand output.directory: %w", err)
	}
	pos := vec(c.Camera.Position)
	return capture.Request{
		Resolution:            c.Output.Resolution,
		Format:                format,
		Mode:                  mode,
		Pose:                  geometry.LookAt(pos, vec(c.Camera.LookAt)),
		Target:                c.Camera.Target,
		UseTargetAsFilename:   c.Camera.UseTargetAsFilename,
		Distance:              c.Camera.Distance,
		HorizontalOrbit:       c.Camera.HorizontalOrbit,
		VerticalOrbit:         c.Camera.VerticalOrbit,
		Offset:                vec(c.Camera.Offset),
		FOVDeg:                c.Camera.FOV,
		Unlit:                 c.Camera.Unlit,
		TransparentBackground: c.Camera.Transparent,
		OnlyRenderTarget:      c.Camera.OnlyTarget,
		Naming: namer.Policy{
			Directory: dir,
			BaseName:  c.Output.BaseName,
			Postfix:   c.Output.Postfix,
			Overwrite: c.Output.Overwrite,
			Delimiter: c.Output.Delimiter,
		},
	}, nil
}

// FramesDir is the expanded temp root for sequence frames.
func (c *Config) FramesDir() (string, error) {
	return homedir.Expand(c.Sequence.TempDir)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Encoder.PollIntervalMs) * time.Millisecond
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Encoder.TimeoutSec) * time.Second
}

// BuildScene returns the configured scene, or the built-in one when the
// config has none.
func (c *Config) BuildScene() (*render.Scene, error) {
	if c.Scene == nil {
		return render.DefaultScene(), nil
	}
	scene := &render.Scene{Background: color.NRGBA{0, 0, 0, 255}}
	if c.Scene.Background != "" {
		bg, err := ParseColor(c.Scene.Background)
		if err != nil {
			return nil, fmt.Errorf("scene.background: %w", err)
		}
		scene.Background = bg
	}
	seen := make(map[string]bool, len(c.Scene.Objects))
	for i, o := range c.Scene.Objects {
		if o.Name == "" {
			return nil, fmt.Errorf("scene.objects[%d]: name is required", i)
		}
		if seen[o.Name] {
			return nil, fmt.Errorf("scene.objects[%d]: duplicate name %q", i, o.Name)
		}
		seen[o.Name] = true
		for axis := 0; axis < 3; axis++ {
			if o.Min[axis] > o.Max[axis] {
				return nil, fmt.Errorf("scene.objects[%d] %s: min is above max", i, o.Name)
			}
		}
		col, err := ParseColor(o.Color)
		if err != nil {
			return nil, fmt.Errorf("scene.objects[%d] %s: %w", i, o.Name, err)
		}
		scene.Objects = append(scene.Objects, render.Object{
			Name:   o.Name,
			Bounds: geometry.Box{Min: vec(o.Min), Max: vec(o.Max)},
			Color:  col,
		})
	}
	return scene, nil
}

// ParseColor reads #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("bad color %q, want #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func vec(a [3]float64) geometry.Vec3 {
	return geometry.V(a[0], a[1], a[2])
}
