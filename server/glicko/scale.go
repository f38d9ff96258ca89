package glicko

// scale is the ratio between public rating points and the Glicko-2 scale.
const scale = 173.7178

// --- public <-> private conversions ---

func RatingToPublic(r float64) float64      { return r*scale + DefaultRatingValue }
func RatingFromPublic(r float64) float64    { return (r - DefaultRatingValue) / scale }
func DeviationToPublic(d float64) float64   { return d * scale }
func DeviationFromPublic(d float64) float64 { return d / scale }

func toMuPhi(r, rd float64) (mu, phi float64)   { return RatingFromPublic(r), DeviationFromPublic(rd) }
func fromMuPhi(mu, phi float64) (r, rd float64) { return RatingToPublic(mu), DeviationToPublic(phi) }
