package collide

import (
	"os"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

var ErrUnknownShape = eris.New("unknown shape")

// SceneDef defines the initial state of a world.
type SceneDef struct {
	Bodies []BodyDef `yaml:"bodies"`
}

// BodyDef defines a body and its colliders. Rotation holds Euler angles in
// degrees applied in X, Y, Z order.
type BodyDef struct {
	Name      string        `yaml:"name"`
	Type      string        `yaml:"type"` // "static", "kinematic", "dynamic"
	Position  [3]float64    `yaml:"position"`
	Rotation  [3]float64    `yaml:"rotation"`
	Sleeping  bool          `yaml:"sleeping"`
	Colliders []ColliderDef `yaml:"colliders"`
}

type ColliderDef struct {
	Shape       string       `yaml:"shape"` // "sphere", "capsule", "box", "convex_mesh", "triangle"
	Radius      float64      `yaml:"radius"`
	Height      float64      `yaml:"height"`
	HalfExtents [3]float64   `yaml:"half_extents"`
	Vertices    [][3]float64 `yaml:"vertices"`
	Faces       [][]int      `yaml:"faces"`
	Scale       *[3]float64  `yaml:"scale"`
	Position    [3]float64   `yaml:"position"`
	Rotation    [3]float64   `yaml:"rotation"`
	IsTrigger   bool         `yaml:"trigger"`
	Category    *uint16      `yaml:"category"`
	Mask        *uint16      `yaml:"mask"`
}

// LoadScene reads a YAML scene file.
func LoadScene(path string) (*SceneDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read scene %s", path)
	}
	scene, err := ParseScene(data)
	if err != nil {
		return nil, eris.Wrapf(err, "scene %s", path)
	}
	return scene, nil
}

func ParseScene(data []byte) (*SceneDef, error) {
	var scene SceneDef
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, eris.Wrap(err, "parse scene")
	}
	return &scene, nil
}

func parseBodyType(s string) (BodyType, error) {
	switch s {
	case "static":
		return BodyStatic, nil
	case "kinematic":
		return BodyKinematic, nil
	case "dynamic", "":
		return BodyDynamic, nil
	}
	return 0, eris.Errorf("unknown body type %q", s)
}

func vec(v [3]float64) mgl64.Vec3 { return mgl64.Vec3{v[0], v[1], v[2]} }

func transformOf(position, rotation [3]float64) geom.Transform {
	q := mgl64.AnglesToQuat(mgl64.DegToRad(rotation[0]), mgl64.DegToRad(rotation[1]), mgl64.DegToRad(rotation[2]), mgl64.XYZ)
	return geom.NewTransform(vec(position), q.Normalize())
}

// BuildShape creates the collision shape described by the definition.
func (d ColliderDef) BuildShape() (shape.Shape, error) {
	switch d.Shape {
	case "sphere":
		return shape.NewSphere(d.Radius)
	case "capsule":
		return shape.NewCapsule(d.Radius, d.Height)
	case "box":
		return shape.NewBox(vec(d.HalfExtents))
	case "convex_mesh":
		scale := mgl64.Vec3{1, 1, 1}
		if d.Scale != nil {
			scale = vec(*d.Scale)
		}
		vertices := make([]mgl64.Vec3, len(d.Vertices))
		for i, v := range d.Vertices {
			vertices[i] = vec(v)
		}
		return shape.NewConvexMesh(vertices, d.Faces, scale)
	case "triangle":
		if len(d.Vertices) != 3 {
			return nil, eris.Errorf("triangle needs 3 vertices, got %d", len(d.Vertices))
		}
		return shape.NewTriangle(vec(d.Vertices[0]), vec(d.Vertices[1]), vec(d.Vertices[2]))
	}
	return nil, eris.Wrapf(ErrUnknownShape, "%q", d.Shape)
}

// Spawn creates the bodies of the scene. Named bodies are returned by name.
// On error the bodies created so far are destroyed.
func (w *World) Spawn(scene *SceneDef) (map[string]*Body, error) {
	named := make(map[string]*Body)
	var created []*Body
	for i, def := range scene.Bodies {
		b, err := w.spawnBody(def)
		if err != nil {
			for _, c := range created {
				w.DestroyBody(c)
			}
			return nil, eris.Wrapf(err, "body %d (%s)", i, def.Name)
		}
		created = append(created, b)
		if def.Name != "" {
			named[def.Name] = b
		}
	}
	w.logger.Infof("world %s: spawned %d bodies", w.name, len(created))
	return named, nil
}

func (w *World) spawnBody(def BodyDef) (*Body, error) {
	bt, err := parseBodyType(def.Type)
	if err != nil {
		return nil, err
	}
	shapes := make([]shape.Shape, len(def.Colliders))
	for i, cd := range def.Colliders {
		if shapes[i], err = cd.BuildShape(); err != nil {
			return nil, eris.Wrapf(err, "collider %d", i)
		}
	}

	b := w.CreateBody(transformOf(def.Position, def.Rotation), bt)
	b.SetUserData(def.Name)
	for i, cd := range def.Colliders {
		c := b.AddCollider(shapes[i], transformOf(cd.Position, cd.Rotation))
		if cd.Category != nil {
			c.SetCollisionCategoryBits(*cd.Category)
		}
		if cd.Mask != nil {
			c.SetCollideWithMaskBits(*cd.Mask)
		}
		c.SetIsTrigger(cd.IsTrigger)
	}
	if def.Sleeping {
		b.SetIsSleeping(true)
	}
	return b, nil
}
