// Package allan computes Allan deviation statistics for fractional frequency data.
//
// Two estimators are provided:
//
//   - Normal: the classic non-overlapping estimator. Second differences of the
//     integrated phase are taken on contiguous, non-overlapping windows.
//   - Overlapping: every overlapping window of length 2m is used, which gives a
//     higher confidence estimate at the same averaging time.
//
// Input is always treated as frequency data. It is integrated to phase
// (x[0] = 0) before the estimator runs, so a constant frequency offset has no
// effect on the result.
//
// # Averaging times
//
// The averaging factors m (tau = m * tau0) come from a TauPolicy:
//
//	TauAll     every m from 1 up to the data length
//	TauOctave  1, 2, 4, 8, ...
//	TauDecade  1, 2, 4, 10, 20, 40, 100, ...
//
// Points backed by fewer than two second differences are dropped from the
// result, so every returned Result satisfies Ns[i] >= 2.
//
// # Usage
//
//	res, err := allan.Compute(values, 1.0, allan.Overlapping, allan.TauOctave)
//	if err != nil {
//	    return err
//	}
//	for i, tau := range res.Taus {
//	    fmt.Println(tau, res.Devs[i], res.Errs[i], res.Ns[i])
//	}
package allan
