// Package physics holds the closed-form hazard models that generate training
// targets for the surrogate models.
//
// # Models
//
// Crop yield (percent of potential, 0-100):
//
//	Yield starts at 100 and takes three independent penalties.
//	  Heat:          (T - Tcrit) * lossRate, where lossRate is the drought rate
//	                 when rainfall is below the optimal band.
//	  Drought:       below MinRain the yield is scaled by rain/MinRain * 0.5;
//	                 between MinRain and OptMin by a linear factor from 0.5 to 1.
//	  Waterlogging:  above OptMax, (rain - OptMax)/1000 * 20, capped at MaxWaterlogLoss.
//	Resilient seed raises Tcrit by 3 C, scales the drought penalty by 0.7 and the
//	waterlogging penalty by 0.6. The result is clamped to [0, 100].
//
// Coastal wave runup (metres), Stockdon-style with mangrove attenuation:
//
//	R = 0.71 * (slope_pct / 100) * H * (1 - 0.45)^(width_m / 100)
//
// Urban flood depth (centimetres), rational method feeding Manning's equation
// for a wide rectangular channel over a one hectare catchment:
//
//	C = 0.95 * imp + 0.10 * (1 - imp)
//	Q = C * I * A                       (I converted from mm/hr to m/s)
//	d = (Q * n / (w * sqrt(S)))^(3/5)   (n = 0.016, w = 10 m, S = slope_pct/100)
//
// # Input validation
//
// Inputs outside physically meaningful bands are rejected with an
// [*InputError] that matches [ErrInvalidPhysicalInput]. Inputs are never
// clamped; only the crop yield output is. The bands are:
//
//	temperature_c          [-20, 60]
//	rainfall_mm            [0, 10000]
//	wave_height_m          [0, 30]
//	slope_pct              (0, 100]
//	mangrove_width_m       [0, 10000]
//	rain_intensity_mm_hr   (0, 500]
//	imperviousness         [0, 1]
//
// Rain intensity must be strictly positive so flood depth is strictly
// increasing in imperviousness over the whole valid domain.
package physics
