package utils

import (
	"math"

	"fix-my-city/internal/models"
)

// EarthRadiusMeters - радиус Земли, который MongoDB использует для $centerSphere.
// Проверка радиуса в памяти считает по нему же, чтобы хранилища давали одинаковый результат.
const EarthRadiusMeters = 6378100.0

// CalculateDistance вычисляет расстояние между двумя точками в километрах по формуле Haversine
func CalculateDistance(loc1, loc2 models.Location) float64 {
	lat1Rad := toRadians(loc1.Latitude())
	lon1Rad := toRadians(loc1.Longitude())
	lat2Rad := toRadians(loc2.Latitude())
	lon2Rad := toRadians(loc2.Longitude())

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters / 1000 * c
}

// WithinRadius - точка лежит не дальше radiusMeters от центра.
func WithinRadius(center, point models.Location, radiusMeters float64) bool {
	return CalculateDistance(center, point)*1000 <= radiusMeters
}

// ValidCoordinates проверяет пару [долгота, широта].
func ValidCoordinates(coords []float64) bool {
	if len(coords) != 2 {
		return false
	}
	lng, lat := coords[0], coords[1]
	if math.IsNaN(lng) || math.IsNaN(lat) {
		return false
	}
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
