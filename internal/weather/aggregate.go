package weather

import (
	"encoding/json"
	"fmt"
)

// forecastPayload mirrors the parts of the provider forecast document we use.
// Pointers distinguish missing fields from zero values.
type forecastPayload struct {
	City *struct {
		Name *string `json:"name"`
	} `json:"city"`
	List *[]forecastItem `json:"list"`
}

type forecastItem struct {
	DtTxt *string `json:"dt_txt"`
	Main  *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

// ParseForecast decodes a raw forecast document into the reported city name
// and its entries, in document order.
func ParseForecast(raw []byte) (string, []ForecastEntry, error) {
	var payload forecastPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if payload.City == nil || payload.City.Name == nil {
		return "", nil, fmt.Errorf("%w: missing city.name", ErrMalformedResponse)
	}
	if payload.List == nil {
		return "", nil, fmt.Errorf("%w: missing list", ErrMalformedResponse)
	}

	items := *payload.List
	entries := make([]ForecastEntry, 0, len(items))
	for i, item := range items {
		if item.DtTxt == nil {
			return "", nil, fmt.Errorf("%w: list[%d] missing dt_txt", ErrMalformedResponse, i)
		}
		if item.Main == nil || item.Main.Temp == nil {
			return "", nil, fmt.Errorf("%w: list[%d] missing main.temp", ErrMalformedResponse, i)
		}
		entries = append(entries, ForecastEntry{
			Timestamp:         *item.DtTxt,
			TemperatureKelvin: *item.Main.Temp,
		})
	}

	return *payload.City.Name, entries, nil
}

// Summarize reduces forecast entries into a Summary in a single pass.
// Extremes are replaced only on strict comparison, so the first entry in scan
// order wins ties.
func Summarize(city string, entries []ForecastEntry) (Summary, error) {
	if len(entries) == 0 {
		return Summary{}, ErrEmptyForecast
	}

	first := entries[0]
	var (
		sum        float64
		maxTemp    = first.Celsius()
		minTemp    = first.Celsius()
		hottestDay = first.Date()
		coldestDay = first.Date()
	)

	for _, e := range entries {
		temp := e.Celsius()
		sum += temp

		if temp > maxTemp {
			maxTemp = temp
			hottestDay = e.Date()
		}
		if temp < minTemp {
			minTemp = temp
			coldestDay = e.Date()
		}
	}

	return Summary{
		City:               city,
		AverageTemperature: sum / float64(len(entries)),
		HottestDay:         hottestDay,
		ColdestDay:         coldestDay,
	}, nil
}

// Aggregate parses a raw forecast document and summarizes it.
func Aggregate(raw []byte) (Summary, error) {
	city, entries, err := ParseForecast(raw)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(city, entries)
}
