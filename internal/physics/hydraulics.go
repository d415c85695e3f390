package physics

import "math"

const (
	runupCoefficient    = 0.71
	mangroveAttenuation = 0.45 // fractional runup reduction per 100 m of mangrove

	runoffImpervious = 0.95
	runoffPervious   = 0.10
	catchmentAreaM2  = 10_000.0
	manningN         = 0.016
	channelWidthM    = 10.0
)

// CoastalRunupM returns the wave runup in metres. Runup never increases with
// mangrove width and grows with wave height for any positive slope.
func CoastalRunupM(waveHeightM, slopePct, mangroveWidthM float64) (float64, error) {
	if err := waveHeightBand.check(waveHeightM); err != nil {
		return 0, err
	}
	if err := slopeBand.check(slopePct); err != nil {
		return 0, err
	}
	if err := mangroveWidthBand.check(mangroveWidthM); err != nil {
		return 0, err
	}

	base := runupCoefficient * (slopePct / 100) * waveHeightM
	return base * math.Pow(1-mangroveAttenuation, mangroveWidthM/100), nil
}

// FloodDepthCM returns the steady-state flood depth in centimetres for a one
// hectare urban catchment.
func FloodDepthCM(rainIntensityMMHr, imperviousFraction, slopePct float64) (float64, error) {
	if err := rainIntensityBand.check(rainIntensityMMHr); err != nil {
		return 0, err
	}
	if err := imperviousBand.check(imperviousFraction); err != nil {
		return 0, err
	}
	if err := slopeBand.check(slopePct); err != nil {
		return 0, err
	}

	c := runoffImpervious*imperviousFraction + runoffPervious*(1-imperviousFraction)
	intensity := rainIntensityMMHr / 1000 / 3600
	q := c * intensity * catchmentAreaM2

	depthM := math.Pow(q*manningN/(channelWidthM*math.Sqrt(slopePct/100)), 3.0/5.0)
	return depthM * 100, nil
}
