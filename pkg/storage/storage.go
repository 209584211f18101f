// All files related functions
package storage

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/logger"
)

var log = logger.Log.WithField("scope", "storage")

// FramePrefix is the name every temp frame starts with: pic1.png, pic2.png ...
// The external encoder reads them back with the pic%0d.png pattern.
const FramePrefix = "pic"

func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errs.IO("storage: ensure dir", err)
	}
	return nil
}

// WriteAtomic writes data to path through a temp file in the same directory.
// On failure the temp file is removed and path is left untouched.
func WriteAtomic(path string, data []byte) (err error) {
	const op = "storage: write"
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return errs.IO(op, err)
	}
	defer func() {
		if err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		return errs.IO(op, err)
	}
	if err = tmpFile.Sync(); err != nil {
		return errs.IO(op, err)
	}
	if err = tmpFile.Close(); err != nil {
		return errs.IO(op, err)
	}
	if err = os.Chmod(tmpFile.Name(), 0o644); err != nil {
		return errs.IO(op, err)
	}
	if err = os.Rename(tmpFile.Name(), path); err != nil {
		return errs.IO(op, err)
	}
	return nil
}

// TempSibling reserves an empty temp file next to path for writers that
// only take a file name. It keeps the extension of path so tools that pick
// a container from the name still work. Finish with Commit or Discard.
func TempSibling(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	f, err := os.CreateTemp(dir, "."+stem+".tmp-*"+ext)
	if err != nil {
		return "", errs.IO("storage: temp", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", errs.IO("storage: temp", err)
	}
	return f.Name(), nil
}

// Commit moves a finished temp file onto path. On failure tmp is removed.
func Commit(tmp, path string) error {
	const op = "storage: commit"
	if err := os.Chmod(tmp, 0o644); err != nil {
		Discard(tmp)
		return errs.IO(op, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		Discard(tmp)
		return errs.IO(op, err)
	}
	return nil
}

// Discard removes a file that must not survive, ignoring a missing one.
func Discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warnf("Cannot remove %s: %v", path, err)
	}
}

// CreateFramesDir makes a fresh temp folder for one sequence under root.
func CreateFramesDir(root string) (string, error) {
	if err := EnsureDir(root); err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(root, "frames-")
	if err != nil {
		return "", errs.IO("storage: frames dir", fmt.Errorf("Error creating frames dir: %w", err))
	}
	return dir, nil
}

func FramePath(dir string, frameNum int) string {
	return filepath.Join(dir, FramePrefix+strconv.Itoa(frameNum)+"."+imaging.PNG.Extension())
}

// FramePattern is the printf style input pattern for the external encoder.
func FramePattern(dir string) string {
	return filepath.Join(dir, FramePrefix+"%0d."+imaging.PNG.Extension())
}

func SaveFrame(dir string, frameNum int, data []byte) (string, error) {
	path := FramePath(dir, frameNum)
	if err := WriteAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ScanFrames lists the frames in dir ordered by frame number.
func ScanFrames(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.IO("storage: scan frames", err)
	}
	type frame struct {
		num  int
		path string
	}
	frames := make([]frame, 0, len(files))
	ext := "." + imaging.PNG.Extension()
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasPrefix(name, FramePrefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, FramePrefix), ext))
		if err != nil {
			continue
		}
		frames = append(frames, frame{num: num, path: filepath.Join(dir, name)})
	}
	if len(frames) == 0 {
		return nil, errs.IO("storage: scan frames", fmt.Errorf("no frames in %s", dir))
	}
	// numeric, pic10 after pic9
	sort.Slice(frames, func(i, j int) bool { return frames[i].num < frames[j].num })
	list := make([]string, len(frames))
	for i, f := range frames {
		list[i] = f.path
	}
	return list, nil
}

func CleanFrames(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errs.IO("storage: clean frames", err)
	}
	return nil
}

// FrameRead loads and decodes an encoded image file.
func FrameRead(filename string) (*imaging.PixelBuffer, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errs.IO("storage: read", err)
	}
	return imaging.Decode(data)
}

// FramesRead loads every frame in order.
func FramesRead(files []string) ([]image.Image, error) {
	imgs := make([]image.Image, 0, len(files))
	for _, f := range files {
		buf, err := FrameRead(f)
		if err != nil {
			return nil, fmt.Errorf("frame %s: %w", f, err)
		}
		imgs = append(imgs, buf.NRGBA)
	}
	return imgs, nil
}
