package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/logger"
	"github.com/1F47E/go-iconreel/pkg/meta"
)

// Verify reads a written capture back and checks format, dimensions and,
// when a sidecar exists, the checksum.
func Verify(path string, resolution int, format imaging.Format) error {
	log := logger.Log.WithField("scope", "core verify")

	data, err := os.ReadFile(path)
	if err != nil {
		return errs.IO("verify", err)
	}
	got, err := imaging.Sniff(data)
	if err != nil {
		return err
	}
	if got != format {
		return errs.Invalid("verify", "%s holds %s bytes, want %s", path, got, format)
	}
	buf, err := imaging.Decode(data)
	if err != nil {
		return err
	}
	if buf.Width() != resolution || buf.Height() != resolution {
		return errs.Invalid("verify", "%s is %dx%d, want %dx%d", path, buf.Width(), buf.Height(), resolution, resolution)
	}

	m, err := meta.ReadSidecar(path)
	if errors.Is(err, errs.ErrIOFailure) {
		log.Debugf("No sidecar for %s", path)
		return nil
	}
	if err != nil {
		return err
	}
	ok, err := m.Validate(data)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Invalid("verify", "checksum mismatch between %s and its sidecar", path)
	}
	log.Debugf("Verified %s", m.Print())
	return nil
}

// Compare reports whether two image files decode to the same pixels.
func Compare(a, b string) (bool, error) {
	bufs := make([]*imaging.PixelBuffer, 2)
	for i, path := range []string{a, b} {
		data, err := os.ReadFile(path)
		if err != nil {
			return false, errs.IO("compare", err)
		}
		bufs[i], err = imaging.Decode(data)
		if err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return bufs[0].Equal(bufs[1]), nil
}
