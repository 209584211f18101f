package video

import (
	"strconv"
	"strings"

	"github.com/1F47E/go-iconreel/pkg/layout"
)

// Arg is one flag and its value. An empty Key is a positional value (the
// output path), an empty Value a bare flag like -y.
type Arg struct {
	Key   string
	Value string
}

// Args is an ordered command line. Setting a key again replaces its value
// and keeps its position.
type Args struct {
	list []Arg
}

func (a *Args) Set(key, value string) *Args {
	for i := range a.list {
		if a.list[i].Key == key {
			a.list[i].Value = value
			return a
		}
	}
	a.list = append(a.list, Arg{Key: key, Value: value})
	return a
}

func (a *Args) Get(key string) (string, bool) {
	for _, arg := range a.list {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return "", false
}

func (a *Args) Len() int {
	return len(a.list)
}

// Strings flattens to argv.
func (a *Args) Strings() []string {
	out := make([]string, 0, 2*len(a.list))
	for _, arg := range a.list {
		if arg.Key != "" {
			out = append(out, arg.Key)
		}
		if arg.Value != "" {
			out = append(out, arg.Value)
		}
	}
	return out
}

func (a *Args) String() string {
	return strings.Join(a.Strings(), " ")
}

// Params feeds the preset command lines.
type Params struct {
	Input           string // printf style frame pattern, pic%0d.png
	Output          string
	Width, Height   int
	FrameRate       int // gif only
	FrameResolution int // frames per turn, used as the video rate
	Frames          int // sprite only
	TileWidth       int // sprite only
}

func (p Params) size() string {
	return strconv.Itoa(p.Width) + "x" + strconv.Itoa(p.Height)
}

func SpriteArgs(p Params) *Args {
	a := &Args{}
	a.Set("-y", "").
		Set("-i", p.Input).
		Set("-filter_complex", layout.FilterComplex(p.Frames, p.TileWidth)).
		Set("", p.Output)
	return a
}

func GifArgs(p Params) *Args {
	a := &Args{}
	a.Set("-r", strconv.Itoa(p.FrameRate)).
		Set("-s", p.size()).
		Set("-y", "").
		Set("-i", p.Input).
		Set("", p.Output)
	return a
}

func videoArgs(p Params, rate int) *Args {
	a := &Args{}
	a.Set("-r", strconv.Itoa(rate)).
		Set("-f", "image2").
		Set("-s", p.size()).
		Set("-y", "").
		Set("-i", p.Input).
		Set("-vcodec", "libx264").
		Set("-crf", "25").
		Set("-pix_fmt", "yuv420p").
		Set("", p.Output)
	return a
}

func Mp4Args(p Params) *Args {
	return videoArgs(p, p.FrameResolution)
}

// AviArgs runs one frame per second slower than mp4.
func AviArgs(p Params) *Args {
	return videoArgs(p, p.FrameResolution-1)
}

// MovArgs uses a fixed rate, caps the output at 100 frames and keeps alpha.
func MovArgs(p Params) *Args {
	a := &Args{}
	a.Set("-r", "20").
		Set("-f", "image2").
		Set("-s", p.size()).
		Set("-y", "").
		Set("-i", p.Input).
		Set("-vframes", "100").
		Set("-vcodec", "libx264").
		Set("-crf", "25").
		Set("-pix_fmt", "bgra").
		Set("", p.Output)
	return a
}
