package job

import (
	"fmt"

	"github.com/1F47E/go-iconreel/pkg/imaging"
)

// job for the frame encoding worker
type JobEnc struct {
	Buffer   *imaging.PixelBuffer
	Dir      string
	FrameNum int
	Angle    int
}

func New(dir string, frameNum, angle int, buf *imaging.PixelBuffer) JobEnc {
	return JobEnc{
		Buffer:   buf,
		Dir:      dir,
		FrameNum: frameNum,
		Angle:    angle,
	}
}

func (j *JobEnc) Print() string {
	return fmt.Sprintf("Job: FrameNum: %d, Angle: %d, Buffer: %dx%d", j.FrameNum, j.Angle, j.Buffer.Width(), j.Buffer.Height())
}

// res from the encoding worker
type JobEncRes struct {
	FrameNum int
	Path     string
	Bytes    int
	Err      error
}
