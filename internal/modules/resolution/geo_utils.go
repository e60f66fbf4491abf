// README: Pure coordinate helpers; dedup key, great-circle distance and stable ordering.
package resolution

import (
	"fmt"
	"math"

	"packwise/internal/modules/geocode"
)

const earthRadiusKm = 6371.0

// coordKey rounds to 3 decimal places (~110 m), the identity used for dedup.
func coordKey(lat, lng float64) string {
	return fmt.Sprintf("%.3f,%.3f", round3(lat), round3(lng))
}

func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // fold -0
	}
	return r
}

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// dedupe keeps one place per coordinate key at the position it was first
// seen. A later duplicate replaces it only with strictly higher confidence.
func dedupe(places []geocode.ResolvedPlace) []geocode.ResolvedPlace {
	index := make(map[string]int, len(places))
	out := make([]geocode.ResolvedPlace, 0, len(places))
	for _, p := range places {
		key := coordKey(p.Latitude, p.Longitude)
		if i, ok := index[key]; ok {
			if p.Confidence > out[i].Confidence {
				out[i] = p
			}
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}

// sortByConfidence is a stable insertion sort, descending. N is at most a
// few dozen.
func sortByConfidence(items []geocode.ResolvedPlace) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && items[j].Confidence < key.Confidence {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}

// AlternateDistancesKm returns, per alternate, its distance from the chosen place.
func (r *Result) AlternateDistancesKm() []float64 {
	out := make([]float64, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = math.Round(HaversineKm(r.Place.Latitude, r.Place.Longitude, c.Latitude, c.Longitude)*10) / 10
	}
	return out
}
