package collide

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/gekko3d/collide/narrowphase"
	"github.com/rotisserie/eris"
)

var ErrInvalidSettings = eris.New("invalid settings")

type Settings struct {
	WorldName   string              `toml:"world_name"`
	BroadPhase  BroadPhaseSettings  `toml:"broad_phase"`
	NarrowPhase NarrowPhaseSettings `toml:"narrow_phase"`
	Contacts    ContactSettings     `toml:"contacts"`
	Logging     LoggingSettings     `toml:"logging"`
}

type BroadPhaseSettings struct {
	// FatAABBInflatePercentage grows each fat AABB by this fraction of its
	// extent, half on each side.
	FatAABBInflatePercentage float64 `toml:"fat_aabb_inflate_percentage"`
}

type NarrowPhaseSettings struct {
	SeparatingAxisRelativeTolerance float64 `toml:"separating_axis_relative_tolerance"`
	SeparatingAxisAbsoluteTolerance float64 `toml:"separating_axis_absolute_tolerance"`
	GJKRelativeError                float64 `toml:"gjk_relative_error"`
	MaxContactPoints                int     `toml:"max_contact_points"`
}

type ContactSettings struct {
	MaxPointsPerManifold    int     `toml:"max_points_per_manifold"`
	CosAngleSimilarManifold float64 `toml:"cos_angle_similar_manifold"`
}

type LoggingSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func DefaultSettings() Settings {
	return Settings{
		BroadPhase: BroadPhaseSettings{
			FatAABBInflatePercentage: 0.08,
		},
		NarrowPhase: NarrowPhaseSettings{
			SeparatingAxisRelativeTolerance: narrowphase.DefaultSeparatingAxisRelativeTolerance,
			SeparatingAxisAbsoluteTolerance: narrowphase.DefaultSeparatingAxisAbsoluteTolerance,
			GJKRelativeError:                narrowphase.DefaultGJKRelativeError,
			MaxContactPoints:                narrowphase.MaxContactPointsPerInfo,
		},
		Contacts: ContactSettings{
			MaxPointsPerManifold:    4,
			CosAngleSimilarManifold: 0.95,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadSettings decodes a TOML file over the defaults, so keys missing from
// the file keep their default value.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, eris.Wrapf(err, "read settings %s", path)
	}
	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, eris.Wrapf(err, "parse settings %s", path)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, eris.Wrapf(err, "settings %s", path)
	}
	return s, nil
}

func (s Settings) Validate() error {
	switch {
	case s.BroadPhase.FatAABBInflatePercentage < 0:
		return eris.Wrapf(ErrInvalidSettings, "fat_aabb_inflate_percentage %v is negative", s.BroadPhase.FatAABBInflatePercentage)
	case s.NarrowPhase.SeparatingAxisRelativeTolerance < 1:
		return eris.Wrapf(ErrInvalidSettings, "separating_axis_relative_tolerance %v is below 1", s.NarrowPhase.SeparatingAxisRelativeTolerance)
	case s.NarrowPhase.SeparatingAxisAbsoluteTolerance < 0:
		return eris.Wrapf(ErrInvalidSettings, "separating_axis_absolute_tolerance %v is negative", s.NarrowPhase.SeparatingAxisAbsoluteTolerance)
	case s.NarrowPhase.GJKRelativeError <= 0:
		return eris.Wrapf(ErrInvalidSettings, "gjk_relative_error %v must be positive", s.NarrowPhase.GJKRelativeError)
	case s.NarrowPhase.MaxContactPoints < 1 || s.NarrowPhase.MaxContactPoints > narrowphase.MaxContactPointsPerInfo:
		return eris.Wrapf(ErrInvalidSettings, "max_contact_points %d outside [1, %d]", s.NarrowPhase.MaxContactPoints, narrowphase.MaxContactPointsPerInfo)
	case s.Contacts.MaxPointsPerManifold < 1 || s.Contacts.MaxPointsPerManifold > narrowphase.MaxContactPointsPerInfo:
		return eris.Wrapf(ErrInvalidSettings, "max_points_per_manifold %d outside [1, %d]", s.Contacts.MaxPointsPerManifold, narrowphase.MaxContactPointsPerInfo)
	case s.Contacts.CosAngleSimilarManifold < -1 || s.Contacts.CosAngleSimilarManifold > 1:
		return eris.Wrapf(ErrInvalidSettings, "cos_angle_similar_manifold %v outside [-1, 1]", s.Contacts.CosAngleSimilarManifold)
	}
	return nil
}

func (s Settings) narrowPhaseConfig() narrowphase.Config {
	return narrowphase.Config{
		SeparatingAxisRelativeTolerance: s.NarrowPhase.SeparatingAxisRelativeTolerance,
		SeparatingAxisAbsoluteTolerance: s.NarrowPhase.SeparatingAxisAbsoluteTolerance,
		GJKRelativeError:                s.NarrowPhase.GJKRelativeError,
		MaxContactPoints:                s.NarrowPhase.MaxContactPoints,
	}
}
