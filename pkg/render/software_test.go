package render

import (
	"image/color"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/geometry"
)

func frontCamera() CameraState {
	cube := DefaultScene().Objects[0]
	return CameraState{
		Pose:       geometry.Orbit(cube.Bounds.Center(), 3, 0, 0),
		Background: DefaultScene().Background,
		Target:     cube.Name,
	}
}

func TestSoftwareRendersTarget(t *testing.T) {
	scene := DefaultScene()
	cube := scene.Objects[0]
	sw := NewSoftware(scene)

	buf, err := sw.Render(frontCamera(), 64)
	require.NoError(t, err)
	assert.Equal(t, 64, buf.Width())
	assert.Equal(t, 64, buf.Height())

	assert.Equal(t, shade(cube.Color, geometry.V(0, 0, -1)), buf.NRGBAAt(32, 32))
	assert.Equal(t, scene.Background, buf.NRGBAAt(0, 0))
	// floor in front of the cube, below the centre line
	assert.NotEqual(t, scene.Background, buf.NRGBAAt(32, 60))
}

func TestSoftwareUnlitTarget(t *testing.T) {
	scene := DefaultScene()
	sw := NewSoftware(scene)

	cam := frontCamera()
	cam.Unlit = true
	buf, err := sw.Render(cam, 64)
	require.NoError(t, err)
	assert.Equal(t, scene.Objects[0].Color, buf.NRGBAAt(32, 32))
}

func TestSoftwareOnlyTargetTransparent(t *testing.T) {
	scene := DefaultScene()
	sw := NewSoftware(scene)

	cam := frontCamera()
	cam.OnlyTarget = true
	buf, err := sw.Render(cam, 64)
	require.NoError(t, err)
	assert.Equal(t, scene.Background, buf.NRGBAAt(32, 60), "floor must not be drawn")
	assert.False(t, buf.HasTransparency())

	cam.Transparent = true
	buf, err = sw.Render(cam, 64)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), buf.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(0), buf.NRGBAAt(32, 60).A)
	assert.Equal(t, uint8(255), buf.NRGBAAt(32, 32).A)
	assert.True(t, buf.HasTransparency())
}

func TestSoftwareLookingStraightDown(t *testing.T) {
	scene := DefaultScene()
	sw := NewSoftware(scene)

	cam := frontCamera()
	cam.Pose = geometry.Orbit(scene.Objects[0].Bounds.Center(), 3, 0, 90)
	buf, err := sw.Render(cam, 32)
	require.NoError(t, err)
	// top face of the cube
	assert.Equal(t, shade(scene.Objects[0].Color, geometry.Up), buf.NRGBAAt(16, 16))
}

func TestSoftwareClosed(t *testing.T) {
	sw := NewSoftware(nil)
	require.NoError(t, sw.Close())

	_, err := sw.Render(frontCamera(), 8)
	assert.ErrorIs(t, err, errs.ErrResourceUnavailable)
}

func TestSoftwareInvalidInput(t *testing.T) {
	sw := NewSoftware(nil)

	_, err := sw.Render(frontCamera(), 0)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	cam := frontCamera()
	cam.Forward = geometry.Vec3{}
	_, err = sw.Render(cam, 8)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestSoftwareBounds(t *testing.T) {
	sw := NewSoftware(nil)
	b, err := sw.Bounds("Cube")
	require.NoError(t, err)
	assert.Equal(t, geometry.V(0, 0.5, 0), b.Center())

	_, err = sw.Bounds("Teapot")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestShade(t *testing.T) {
	c := color.NRGBA{200, 100, 40, 255}
	lit := shade(c, lightDir)
	assert.Equal(t, c, lit)
	dark := shade(c, lightDir.Scale(-1))
	assert.Equal(t, color.NRGBA{70, 35, 14, 255}, dark)
}

func TestSoftwareRenderAllocatesOneRasterizer(t *testing.T) {
	sw := NewSoftware(nil)
	cam := frontCamera()
	cam.Pose = geometry.Orbit(DefaultScene().Objects[0].Bounds.Center(), 3, 30, 20)
	const res = 512
	_, err := sw.Render(cam, res)
	require.NoError(t, err)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = sw.Render(cam, res)
	require.NoError(t, err)
	runtime.ReadMemStats(&after)

	// pixel buffer plus the rasterizer's accumulation and mask buffers,
	// 4 bytes per pixel each, shared by every face of the frame
	frame := uint64(res * res * 4)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, 4*frame)
}
