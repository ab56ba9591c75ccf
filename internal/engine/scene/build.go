package scene

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/voxmesh/internal/config"
	"github.com/Faultbox/voxmesh/internal/engine/shapes"
	"github.com/Faultbox/voxmesh/pkg/math"
)

// BuildShape creates the shape a configuration describes.
func BuildShape(sc config.ShapeConfig) (shapes.Shape, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	center := vec3(sc.Center)
	switch sc.Kind {
	case config.KindSphere:
		return shapes.Sphere{Center: center, Radius: sc.Radius}, nil

	case config.KindCuboid:
		c := shapes.NewCuboid(center, vec3(sc.Size).Scale(0.5))
		c.Rotation = math.QuatFromEuler(sc.Rotation[0], sc.Rotation[1], sc.Rotation[2])
		return c, nil

	case config.KindHeightfield:
		return shapes.Heightfield{Minimum: center, Heights: sc.Heights, Spacing: sc.Spacing}, nil

	default:
		solid, err := buildSolid(sc)
		if err != nil {
			return nil, err
		}
		return solid, nil
	}
}

// buildSolid creates an sdfx shape, placed by Rotation then Center.
func buildSolid(sc config.ShapeConfig) (shapes.Solid, error) {
	var solid shapes.Solid
	var err error

	switch sc.Kind {
	case config.KindBox:
		solid, err = shapes.Box(vec3(sc.Size), sc.Round)
	case config.KindCylinder:
		solid, err = shapes.Cylinder(sc.Height, sc.Radius, sc.Round)
	case config.KindUnion, config.KindDifference, config.KindIntersection:
		solid, err = combine(sc)
	default:
		err = errors.Errorf("kind %q is not a solid", sc.Kind)
	}
	if err != nil {
		return shapes.Solid{}, err
	}

	if sc.Rotation != [3]float32{} {
		solid = solid.Rotate(vec3(sc.Rotation))
	}
	if sc.Center != [3]float32{} {
		solid = solid.Translate(vec3(sc.Center))
	}
	return solid, nil
}

// combine folds the parts of a boolean shape from left to right.
func combine(sc config.ShapeConfig) (shapes.Solid, error) {
	var result shapes.Solid
	for i, part := range sc.Parts {
		solid, err := buildSolid(part)
		if err != nil {
			return shapes.Solid{}, errors.Wrapf(err, "part %d", i)
		}
		if i == 0 {
			result = solid
			continue
		}
		switch sc.Kind {
		case config.KindUnion:
			result = shapes.Union(result, solid)
		case config.KindDifference:
			result = shapes.Difference(result, solid)
		case config.KindIntersection:
			result = shapes.Intersection(result, solid)
		}
	}
	return result, nil
}
