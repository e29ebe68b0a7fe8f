package narrowphase

// MaxContactPointsPerInfo is the hard cap of contact points stored per
// narrow-phase entry.
const MaxContactPointsPerInfo = 16

const (
	DefaultSeparatingAxisRelativeTolerance = 1.002
	DefaultSeparatingAxisAbsoluteTolerance = 0.0005
	DefaultGJKRelativeError                = 1e-3
)

// Config holds the numeric tolerances of the narrow phase. The SAT
// tolerances bias the choice of a face axis over an edge axis and between
// the faces of the two polyhedra, which keeps manifolds stable between
// frames.
type Config struct {
	SeparatingAxisRelativeTolerance float64
	SeparatingAxisAbsoluteTolerance float64
	GJKRelativeError                float64
	MaxContactPoints                int
}

func DefaultConfig() Config {
	return Config{
		SeparatingAxisRelativeTolerance: DefaultSeparatingAxisRelativeTolerance,
		SeparatingAxisAbsoluteTolerance: DefaultSeparatingAxisAbsoluteTolerance,
		GJKRelativeError:                DefaultGJKRelativeError,
		MaxContactPoints:                MaxContactPointsPerInfo,
	}
}

func (c Config) maxContactPoints() int {
	if c.MaxContactPoints <= 0 || c.MaxContactPoints > MaxContactPointsPerInfo {
		return MaxContactPointsPerInfo
	}
	return c.MaxContactPoints
}

// notSignificantlySmaller reports whether a candidate penetration fails to
// beat the current one by the SAT tolerances.
func (c Config) notSignificantlySmaller(candidate, current float64) bool {
	return candidate*c.SeparatingAxisRelativeTolerance+c.SeparatingAxisAbsoluteTolerance >= current
}
