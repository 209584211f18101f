package meta

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/logger"
	"github.com/1F47E/go-iconreel/pkg/storage"
)

// SidecarSuffix is appended to the image path for the metadata file.
const SidecarSuffix = ".meta.yaml"

// Metadata travels with a write request. AlphaIsTransparency tells an
// importer that the alpha channel of the image is meaningful.
type Metadata struct {
	Filename            string
	Format              string
	Width               int
	Height              int
	AlphaIsTransparency bool
	timestamp           int64
	checksum            uint64
}

func New(path, format string, width, height int, alpha bool) Metadata {
	return Metadata{
		Filename:            filepath.Base(path),
		Format:              format,
		Width:               width,
		Height:              height,
		AlphaIsTransparency: alpha,
		timestamp:           time.Now().Unix(),
	}
}

func (m *Metadata) IsOk() bool {
	return len(m.Filename) > 0 && m.timestamp > 0
}

func (m *Metadata) Print() string {
	return fmt.Sprintf("Filename: %s, %s %dx%d, alpha: %t, Timestamp: %d (%s)",
		m.Filename, m.Format, m.Width, m.Height, m.AlphaIsTransparency, m.timestamp, m.FormatDatetime())
}

func (m *Metadata) FormatDatetime() string {
	t := time.Unix(m.timestamp, 0)
	return t.Local().Format(time.RFC822)
}

func (m *Metadata) Checksum() uint64 {
	return m.checksum
}

// Hash stores the checksum of the encoded image bytes.
func (m *Metadata) Hash(data []byte) error {
	checksum, err := generateChecksum(data)
	if err != nil {
		return err
	}
	m.checksum = checksum
	return nil
}

// validate
func (m *Metadata) Validate(data []byte) (bool, error) {
	checksum, err := generateChecksum(data)
	if err != nil {
		return false, err
	}
	return checksum == m.checksum, nil
}

// sidecar is the on-disk shape.
type sidecar struct {
	Filename            string `yaml:"filename"`
	Format              string `yaml:"format"`
	Width               int    `yaml:"width"`
	Height              int    `yaml:"height"`
	AlphaIsTransparency bool   `yaml:"alpha_is_transparency"`
	Timestamp           int64  `yaml:"timestamp"`
	Checksum            string `yaml:"checksum"`
}

func SidecarPath(imagePath string) string {
	return imagePath + SidecarSuffix
}

// WriteSidecar stores m as YAML beside the image and returns the sidecar path.
func (m *Metadata) WriteSidecar(imagePath string) (string, error) {
	log := logger.Log.WithField("scope", "meta sidecar")
	out, err := yaml.Marshal(sidecar{
		Filename:            m.Filename,
		Format:              m.Format,
		Width:               m.Width,
		Height:              m.Height,
		AlphaIsTransparency: m.AlphaIsTransparency,
		Timestamp:           m.timestamp,
		Checksum:            hex.EncodeToString(convertUint64ToBytes(m.checksum)),
	})
	if err != nil {
		return "", fmt.Errorf("META:Error marshalling sidecar: %w", err)
	}
	path := SidecarPath(imagePath)
	if err := storage.WriteAtomic(path, out); err != nil {
		return "", err
	}
	log.Debugf("Sidecar written: %s", path)
	return path, nil
}

func ReadSidecar(imagePath string) (Metadata, error) {
	data, err := os.ReadFile(SidecarPath(imagePath))
	if err != nil {
		return Metadata{}, errs.IO("meta: read sidecar", err)
	}
	var s sidecar
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Metadata{}, errs.Invalid("meta: read sidecar", "broken sidecar: %v", err)
	}
	raw, err := hex.DecodeString(s.Checksum)
	if err != nil || len(raw) != 8 {
		return Metadata{}, errs.Invalid("meta: read sidecar", "broken checksum %q", s.Checksum)
	}
	return Metadata{
		Filename:            s.Filename,
		Format:              s.Format,
		Width:               s.Width,
		Height:              s.Height,
		AlphaIsTransparency: s.AlphaIsTransparency,
		timestamp:           s.Timestamp,
		checksum:            binary.BigEndian.Uint64(raw),
	}, nil
}

func generateChecksum(data []byte) (uint64, error) {
	hasher := fnv.New64a()
	_, err := hasher.Write(data)
	if err != nil {
		return 0, fmt.Errorf("META:Error writing to hasher")
	}
	return hasher.Sum64(), nil
}

func convertUint64ToBytes(num uint64) []byte {
	byteArray := make([]byte, 8)
	binary.BigEndian.PutUint64(byteArray, num)
	return byteArray
}
