package video

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-iconreel/pkg/errs"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not in PATH", name)
	}
}

func TestArgsOrder(t *testing.T) {
	a := &Args{}
	a.Set("-r", "16").Set("-y", "").Set("-i", "in").Set("", "out.mp4")
	a.Set("-r", "15")

	assert.Equal(t, 4, a.Len())
	assert.Equal(t, []string{"-r", "15", "-y", "-i", "in", "out.mp4"}, a.Strings())
	assert.Equal(t, "-r 15 -y -i in out.mp4", a.String())

	v, ok := a.Get("-i")
	assert.True(t, ok)
	assert.Equal(t, "in", v)
	_, ok = a.Get("-vcodec")
	assert.False(t, ok)
}

func TestPresets(t *testing.T) {
	p := Params{
		Input:           "tmp/pic%0d.png",
		Output:          "out/Icon_128x128.x",
		Width:           128,
		Height:          128,
		FrameRate:       1,
		FrameResolution: 16,
		Frames:          17,
	}

	tests := []struct {
		name string
		args *Args
		want string
	}{
		{"sprite", SpriteArgs(p), "-y -i tmp/pic%0d.png -filter_complex scale=100:-1,tile=3x6 out/Icon_128x128.x"},
		{"gif", GifArgs(p), "-r 1 -s 128x128 -y -i tmp/pic%0d.png out/Icon_128x128.x"},
		{"mp4", Mp4Args(p), "-r 16 -f image2 -s 128x128 -y -i tmp/pic%0d.png -vcodec libx264 -crf 25 -pix_fmt yuv420p out/Icon_128x128.x"},
		{"avi", AviArgs(p), "-r 15 -f image2 -s 128x128 -y -i tmp/pic%0d.png -vcodec libx264 -crf 25 -pix_fmt yuv420p out/Icon_128x128.x"},
		{"mov", MovArgs(p), "-r 20 -f image2 -s 128x128 -y -i tmp/pic%0d.png -vframes 100 -vcodec libx264 -crf 25 -pix_fmt bgra out/Icon_128x128.x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.args.String())
			// outputs are written into a reserved temp file, never prompt
			_, ok := tt.args.Get("-y")
			assert.True(t, ok)
		})
	}
}

func TestCommandExtraArgs(t *testing.T) {
	e := NewEncoder("")
	assert.Equal(t, "ffmpeg", e.Binary)
	assert.Equal(t, 25*time.Millisecond, e.PollInterval)

	e.ExtraArgs = `-hide_banner -loglevel "error"`
	a := &Args{}
	a.Set("", "out.gif")
	argv, err := e.Command(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"-hide_banner", "-loglevel", "error", "out.gif"}, argv)

	e.ExtraArgs = `-metadata "title`
	_, err = e.Command(a)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestStartMissingBinary(t *testing.T) {
	e := NewEncoder("iconreel-no-such-encoder")
	_, err := e.Start(context.Background(), &Args{})
	assert.ErrorIs(t, err, errs.ErrResourceUnavailable)
}

func TestWaitSuccess(t *testing.T) {
	requireBinary(t, "true")
	e := NewEncoder("true")

	h, err := e.Start(context.Background(), &Args{})
	require.NoError(t, err)
	require.NoError(t, h.Wait(context.Background()))

	select {
	case <-h.Done():
	default:
		t.Fatal("done channel not closed after wait")
	}
}

func TestWaitExitCode(t *testing.T) {
	requireBinary(t, "false")
	err := NewEncoder("false").Run(context.Background(), &Args{})
	assert.ErrorIs(t, err, errs.ErrIOFailure)
	assert.Contains(t, err.Error(), "exited with code 1")
}

func TestWaitTimeout(t *testing.T) {
	requireBinary(t, "sleep")
	e := NewEncoder("sleep")
	e.Timeout = 50 * time.Millisecond
	a := &Args{}
	a.Set("", "10")

	start := time.Now()
	err := e.Run(context.Background(), a)
	assert.ErrorIs(t, err, errs.ErrIOFailure)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWaitCancel(t *testing.T) {
	requireBinary(t, "sleep")
	a := &Args{}
	a.Set("", "10")
	h, err := NewEncoder("sleep").Start(context.Background(), a)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	assert.ErrorIs(t, h.Wait(ctx), context.Canceled)
	<-h.Done()
}

func TestStartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEncoder("true").Start(ctx, &Args{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{max: 4}
	_, _ = b.Write([]byte("abc"))
	_, _ = b.Write([]byte("defg"))
	assert.Equal(t, "defg", b.String())
}
