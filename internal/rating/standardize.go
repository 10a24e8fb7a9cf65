package rating

// Per-provider rating distributions. Tabelog scores cluster low and tight;
// Yelp runs high and wide. Centering and scaling each before blending makes
// the sources comparable.
type prior struct {
	mean  float64
	sigma float64
}

var priors = map[Provider]prior{
	ProviderGoogle:  {mean: 3.8, sigma: 0.4},
	ProviderTabelog: {mean: 3.1, sigma: 0.35},
	ProviderYelp:    {mean: 4.0, sigma: 0.5},
}

const (
	neutralMidpoint = 3.5
	zScale          = 0.5
)

// Standardize fuses the triple into one 1–5-centered figure: count-weighted
// average of per-provider z-scores, remapped via 3.5 + 0.5*z. Providers with
// a zero count or absent score carry zero weight and are excluded from the
// weight normalization. Returns nil when nothing contributes, never a
// misleading default.
//
// The output is deliberately unclamped; extreme inputs may leave [1,5].
// Clamping here would hide calibration errors. Callers may clamp for
// display.
func Standardize(t Triple) *float64 {
	type leg struct {
		p Provider
		s Sample
	}
	legs := []leg{
		{ProviderGoogle, t.Google},
		{ProviderTabelog, t.Tabelog},
		{ProviderYelp, t.Yelp},
	}

	total := 0
	for _, l := range legs {
		if l.s.Score != nil && l.s.Count > 0 {
			total += l.s.Count
		}
	}
	if total == 0 {
		return nil
	}

	weightedZ := 0.0
	for _, l := range legs {
		if l.s.Score == nil || l.s.Count == 0 {
			continue
		}
		p := priors[l.p]
		z := (*l.s.Score - p.mean) / p.sigma
		weight := float64(l.s.Count) / float64(total)
		weightedZ += weight * z
	}

	mapped := neutralMidpoint + zScale*weightedZ
	return &mapped
}
