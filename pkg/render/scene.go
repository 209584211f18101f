package render

import (
	"image/color"

	"github.com/1F47E/go-iconreel/pkg/geometry"
)

// Object is a solid axis-aligned box.
type Object struct {
	Name   string
	Bounds geometry.Box
	Color  color.NRGBA
}

type Scene struct {
	Background color.NRGBA
	Objects    []Object
}

// Find returns the first object with the given name.
func (s *Scene) Find(name string) (Object, bool) {
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// DefaultScene is a unit cube standing on a floor slab.
func DefaultScene() *Scene {
	return &Scene{
		Background: color.NRGBA{49, 77, 121, 255},
		Objects: []Object{
			{
				Name:   "Cube",
				Bounds: geometry.Box{Min: geometry.V(-0.5, 0, -0.5), Max: geometry.V(0.5, 1, 0.5)},
				Color:  color.NRGBA{230, 126, 34, 255},
			},
			{
				Name:   "Floor",
				Bounds: geometry.Box{Min: geometry.V(-2, -0.1, -2), Max: geometry.V(2, 0, 2)},
				Color:  color.NRGBA{127, 140, 141, 255},
			},
		},
	}
}
