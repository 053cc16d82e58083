package allan

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Compute estimates the Allan deviation of frequency data sampled at rate
// samples per second.
func Compute(freq []float64, rate float64, variant Variant, policy TauPolicy) (Result, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	if variant != Normal && variant != Overlapping {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}

	phase := frequencyToPhase(freq, rate)
	factors, err := averagingFactors(len(phase), policy)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", err, policy)
	}

	res := Result{
		Taus: make([]float64, 0, len(factors)),
		Devs: make([]float64, 0, len(factors)),
		Errs: make([]float64, 0, len(factors)),
		Ns:   make([]int, 0, len(factors)),
	}
	for _, m := range factors {
		stride := 1
		if variant == Normal {
			stride = m
		}
		dev, devErr, n := phaseDeviation(phase, rate, m, stride)
		if n <= 1 {
			continue
		}
		res.Taus = append(res.Taus, float64(m)/rate)
		res.Devs = append(res.Devs, dev)
		res.Errs = append(res.Errs, devErr)
		res.Ns = append(res.Ns, n)
	}

	if res.Empty() {
		return Result{}, fmt.Errorf("%w: %d samples, %s taus, %s estimator",
			ErrNoTaus, len(freq), policy, variant)
	}
	return res, nil
}

// frequencyToPhase integrates fractional frequency into phase. The mean is
// removed first to keep precision when fluctuations ride on a large offset.
func frequencyToPhase(freq []float64, rate float64) []float64 {
	if len(freq) == 0 {
		return nil
	}
	dt := 1.0 / rate
	mean := stat.Mean(freq, nil)

	phase := make([]float64, len(freq)+1)
	for i, y := range freq {
		phase[i+1] = phase[i] + (y-mean)*dt
	}
	return phase
}

// phaseDeviation evaluates one averaging factor m, stepping the window start
// by stride. It returns the deviation, its 1-sigma error and the number of
// second differences used.
func phaseDeviation(phase []float64, rate float64, m, stride int) (float64, float64, int) {
	span := 2 * m
	if len(phase) <= span {
		return math.NaN(), math.NaN(), 0
	}

	diffs := make([]float64, 0, (len(phase)-span+stride-1)/stride)
	for i := 0; i+span < len(phase); i += stride {
		diffs = append(diffs, phase[i+span]-2*phase[i+m]+phase[i])
	}

	n := len(diffs)
	sum := floats.Dot(diffs, diffs)
	dev := math.Sqrt(sum/(2*float64(n))) / float64(m) * rate
	return dev, dev / math.Sqrt(float64(n)), n
}
