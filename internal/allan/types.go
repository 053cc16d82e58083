package allan

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRate is returned when the sampling rate is not a positive finite number.
	ErrInvalidRate = errors.New("sampling rate must be positive and finite")
	// ErrUnknownVariant is returned for an estimator variant outside Normal/Overlapping.
	ErrUnknownVariant = errors.New("unknown estimator variant")
	// ErrUnknownTauPolicy is returned for a tau policy outside all/octave/decade.
	ErrUnknownTauPolicy = errors.New("unknown tau policy")
	// ErrNoTaus is returned when the series is too short to support any averaging time.
	ErrNoTaus = errors.New("series too short for any averaging time")
)

// Variant selects the estimator.
type Variant int

const (
	Normal Variant = iota
	Overlapping
)

func (v Variant) String() string {
	switch v {
	case Normal:
		return "normal"
	case Overlapping:
		return "overlapping"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant maps "normal" or "overlapping" to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return Normal, nil
	case "overlapping":
		return Overlapping, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// TauPolicy selects which averaging factors are evaluated.
type TauPolicy int

const (
	TauOctave TauPolicy = iota
	TauAll
	TauDecade
)

func (p TauPolicy) String() string {
	switch p {
	case TauAll:
		return "all"
	case TauOctave:
		return "octave"
	case TauDecade:
		return "decade"
	default:
		return fmt.Sprintf("taus(%d)", int(p))
	}
}

// ParseTauPolicy maps "all", "octave" or "decade" to a TauPolicy.
func ParseTauPolicy(s string) (TauPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return TauAll, nil
	case "octave":
		return TauOctave, nil
	case "decade":
		return TauDecade, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTauPolicy, s)
	}
}

// Result holds one deviation curve. All four slices share a length and Taus
// is strictly increasing.
type Result struct {
	Taus []float64
	Devs []float64
	Errs []float64
	Ns   []int
}

// Len returns the number of averaging times in the result.
func (r Result) Len() int {
	return len(r.Taus)
}

// Empty reports whether the result carries no points.
func (r Result) Empty() bool {
	return len(r.Taus) == 0
}
