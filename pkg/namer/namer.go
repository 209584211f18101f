// Package namer picks output paths that never clobber an existing file
// unless the caller asked for it.
package namer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1F47E/go-iconreel/pkg/errs"
)

// Policy is built fresh for every save from user configuration.
type Policy struct {
	Directory string
	BaseName  string
	Postfix   string
	Extension string
	Overwrite bool
	Delimiter string

	// Exists reports whether a path is taken. Nil means os.Lstat.
	Exists func(path string) bool
}

// fileExists treats any directory entry as taken, dangling symlinks
// included. Only a definite "not exist" frees the name, any other
// error is returned.
func fileExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errs.IO("namer: check "+path, err)
	}
}

func (p Policy) exists(path string) (bool, error) {
	if p.Exists != nil {
		return p.Exists(path), nil
	}
	return fileExists(path)
}

func (p Policy) validate() error {
	if p.BaseName == "" {
		return errs.Invalid("namer", "file name is empty")
	}
	if strings.TrimPrefix(p.Extension, ".") == "" {
		return errs.Invalid("namer", "extension is empty")
	}
	return nil
}

func (p Policy) stem() string {
	return p.BaseName + p.Postfix
}

func (p Policy) ext() string {
	return strings.TrimPrefix(p.Extension, ".")
}

// Candidates is a lazy, unbounded sequence of paths for a policy:
// the plain name first, then stem{delim}1, stem{delim}2 and so on.
// Build a new one to restart.
type Candidates struct {
	policy  Policy
	counter int
}

func NewCandidates(p Policy) *Candidates {
	return &Candidates{policy: p}
}

func (c *Candidates) Next() string {
	p := c.policy
	name := p.stem()
	if c.counter > 0 {
		name += p.Delimiter + strconv.Itoa(c.counter)
	}
	c.counter++
	return filepath.Join(p.Directory, name+"."+p.ext())
}

// Resolve creates the directory if needed and returns the first free candidate.
// The loop has no upper bound: it assumes the filesystem eventually yields a free slot.
// Nothing is locked, a concurrent writer can still take the path after it is returned.
func Resolve(p Policy) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	if p.Directory != "" {
		if err := os.MkdirAll(p.Directory, os.ModePerm); err != nil {
			return "", errs.IO("namer: create directory", err)
		}
	}

	seq := NewCandidates(p)
	path := seq.Next()
	if p.Overwrite {
		return path, nil
	}
	for {
		taken, err := p.exists(path)
		if err != nil {
			return "", err
		}
		if !taken {
			return path, nil
		}
		path = seq.Next()
	}
}
