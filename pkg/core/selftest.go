package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/1F47E/go-iconreel/pkg/capture"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/namer"
	"github.com/1F47E/go-iconreel/pkg/render"
)

// SelfTest captures the built-in scene twice into dir/Output and checks the
// second run lands on Icon_1.png while the first file stays as written.
// Returns both paths.
func SelfTest(ctx context.Context, dir string) (string, string, error) {
	c := NewCore(ctx, render.NewSoftware(nil), Options{Sidecar: true})
	defer c.Close()

	req := capture.Request{
		Resolution: 128,
		Format:     imaging.PNG,
		Mode:       capture.Orbit,
		Target:     "Cube",
		Distance:   3,
		Naming: namer.Policy{
			Directory: filepath.Join(dir, "Output"),
			BaseName:  "Icon",
			Delimiter: "_",
		},
	}

	first, err := c.Capture(req)
	if err != nil {
		return "", "", fmt.Errorf("first capture: %w", err)
	}
	second, err := c.Capture(req)
	if err != nil {
		return first.Path, "", fmt.Errorf("second capture: %w", err)
	}

	want := filepath.Join(dir, "Output", "Icon_1.png")
	if second.Path != want {
		return first.Path, second.Path, fmt.Errorf("second capture saved as %s, want %s", second.Path, want)
	}
	for _, path := range []string{first.Path, second.Path} {
		if err := Verify(path, req.Resolution, req.Format); err != nil {
			return first.Path, second.Path, err
		}
	}
	same, err := Compare(first.Path, second.Path)
	if err != nil {
		return first.Path, second.Path, err
	}
	if !same {
		return first.Path, second.Path, fmt.Errorf("captures of the same request differ")
	}
	return first.Path, second.Path, nil
}
