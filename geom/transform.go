package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid transform: a rotation followed by a translation.
// Orientation is expected to be a unit quaternion.
type Transform struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

func Identity() Transform {
	return Transform{
		Position:    mgl64.Vec3{0, 0, 0},
		Orientation: mgl64.QuatIdent(),
	}
}

// NewTransform normalizes the orientation before storing it.
func NewTransform(position mgl64.Vec3, orientation mgl64.Quat) Transform {
	if orientation.Len() == 0 {
		orientation = mgl64.QuatIdent()
	}
	return Transform{Position: position, Orientation: orientation.Normalize()}
}

func Translation(x, y, z float64) Transform {
	return Transform{Position: mgl64.Vec3{x, y, z}, Orientation: mgl64.QuatIdent()}
}

// Apply maps a point from local space into the space the transform points to.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Orientation.Rotate(p).Add(t.Position)
}

// ApplyVector rotates a direction; translation is ignored.
func (t Transform) ApplyVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Orientation.Rotate(v)
}

// InverseApplyVector rotates a direction back into local space.
func (t Transform) InverseApplyVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Orientation.Conjugate().Rotate(v)
}

func (t Transform) Inverse() Transform {
	inv := t.Orientation.Conjugate()
	return Transform{
		Position:    inv.Rotate(t.Position.Mul(-1)),
		Orientation: inv,
	}
}

// Mul composes two transforms: (t.Mul(o)).Apply(p) == t.Apply(o.Apply(p)).
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Position:    t.Apply(o.Position),
		Orientation: t.Orientation.Mul(o.Orientation),
	}
}

// RotationMatrix returns the 3x3 rotation of the transform.
func (t Transform) RotationMatrix() mgl64.Mat3 {
	return t.Orientation.Mat4().Mat3()
}

func (t Transform) ObjectToWorld() mgl64.Mat4 {
	// M = T * R
	translate := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	return translate.Mul4(t.Orientation.Mat4())
}

func (t Transform) WorldToObject() mgl64.Mat4 {
	// inv(M) = inv(R) * inv(T)
	invTranslate := mgl64.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())
	return t.Orientation.Conjugate().Mat4().Mul4(invTranslate)
}

// ApproxEqual compares positions and orientations component-wise with an
// absolute tolerance.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(t.Position[i]-o.Position[i]) > eps {
			return false
		}
	}
	// q and -q encode the same rotation
	return quatWithin(t.Orientation, o.Orientation, eps) || quatWithin(t.Orientation, o.Orientation.Scale(-1), eps)
}

func quatWithin(a, b mgl64.Quat, eps float64) bool {
	if math.Abs(a.W-b.W) > eps {
		return false
	}
	for i := 0; i < 3; i++ {
		if math.Abs(a.V[i]-b.V[i]) > eps {
			return false
		}
	}
	return true
}

func (t Transform) String() string {
	return fmt.Sprintf("Transform(pos=%v, rot=%v)", t.Position, t.Orientation)
}
