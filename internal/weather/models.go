package weather

import "strings"

// kelvinOffset is subtracted from provider temperatures to get Celsius.
const kelvinOffset = 273.15

// ForecastEntry is a single data point of a multi-day forecast.
type ForecastEntry struct {
	Timestamp         string  // "YYYY-MM-DD HH:MM:SS" as reported by the provider
	TemperatureKelvin float64
}

// Date returns the calendar date part of the entry timestamp.
func (e ForecastEntry) Date() string {
	date, _, _ := strings.Cut(e.Timestamp, " ")
	return date
}

// Celsius returns the entry temperature converted from Kelvin.
func (e ForecastEntry) Celsius() float64 {
	return e.TemperatureKelvin - kelvinOffset
}

// Summary is the aggregated view of a city forecast returned to clients.
type Summary struct {
	// City is the canonical name reported by the provider, which may differ
	// from the name that was requested.
	City               string  `json:"city"`
	AverageTemperature float64 `json:"averageTemperature"` // Celsius
	HottestDay         string  `json:"hottestDay"`
	ColdestDay         string  `json:"coldestDay"`
}
