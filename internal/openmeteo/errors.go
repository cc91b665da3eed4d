package openmeteo

import "fmt"

// CityNotFoundError means geocoding returned no match for the city name.
// Tool handlers surface it as a structured result, never a protocol fault.
type CityNotFoundError struct {
	City string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city not found: %s", e.City)
}

// UpstreamError means the Open-Meteo API was unreachable or answered with an
// error status. No retries are attempted; the caller re-issues the request.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream request failed with status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
