package tools

import (
	"context"
	"errors"
	"sync"

	"travelagent/weather"
)

func testDataset() *Dataset {
	return &Dataset{
		Flights: []Flight{
			{FlightID: "6E201", Airline: "IndiGo", From: "Delhi", To: "Goa", DepartureTime: "06:00", ArrivalTime: "08:40", Price: 6000},
			{FlightID: "AI883", Airline: "Air India", From: "Delhi", To: "Goa", DepartureTime: "09:15", ArrivalTime: "11:50", Price: 4500},
			{FlightID: "SG145", Airline: "SpiceJet", From: "Delhi", To: "Goa", DepartureTime: "13:00", ArrivalTime: "15:35", Price: 4500},
			{FlightID: "UK811", Airline: "Vistara", From: "Mumbai", To: "Goa", DepartureTime: "07:30", ArrivalTime: "08:45", Price: 3200},
		},
		Hotels: []Hotel{
			{Name: "Sea Breeze Inn", City: "Goa", Stars: 2, PricePerNight: 1800, Amenities: []string{"WiFi"}},
			{Name: "Palm Grove Resort", City: "Goa", Stars: 4, PricePerNight: 4000, Amenities: []string{"Pool", "WiFi"}},
			{Name: "Coral Bay Hotel", City: "Goa", Stars: 3, PricePerNight: 3000, Amenities: []string{"Breakfast"}},
			{Name: "Taj Fort Aguada", City: "Goa", Stars: 5, PricePerNight: 12000, Amenities: []string{"Spa", "Pool"}},
			{Name: "Lakeview Palace", City: "Jaipur", Stars: 5, PricePerNight: 9000},
			{Name: "Heritage Haveli", City: "Jaipur", Stars: 4, PricePerNight: 7000},
		},
		Places: []Place{
			{Name: "Baga Beach", City: "Goa", Type: "beach", Rating: 4.5, Description: "Lively beach"},
			{Name: "Basilica of Bom Jesus", City: "Goa", Type: "church", Rating: 4.7, Description: "UNESCO site"},
			{Name: "Fort Aguada", City: "Goa", Type: "fort", Rating: 4.4, Description: "17th century fort"},
			{Name: "Calangute Beach", City: "Goa", Type: "beach", Rating: 4.2, Description: "Queen of beaches"},
			{Name: "Dudhsagar Falls", City: "Goa", Type: "nature", Rating: 4.8, Description: "Four-tiered waterfall"},
			{Name: "Anjuna Flea Market", City: "Goa", Type: "market", Rating: 4.0, Description: "Wednesday market"},
			{Name: "Palolem Beach", City: "Goa", Type: "beach", Rating: 4.5, Description: "Crescent beach"},
			{Name: "Amber Fort", City: "Jaipur", Type: "fort", Rating: 4.8, Description: "Hilltop fort"},
		},
	}
}

func testStore() *Store { return NewStore(testDataset()) }

type stubForecaster struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (s *stubForecaster) Forecast(ctx context.Context, city string, days int) (*weather.Forecast, error) {
	s.mu.Lock()
	s.calls = append(s.calls, city)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	name, coords, ok := weather.Lookup(city)
	if !ok {
		return nil, &weather.UnknownCityError{City: city}
	}
	hi, lo := 31.0, 24.0
	fc := &weather.Forecast{
		Location:      weather.Location{City: name, Latitude: coords.Latitude, Longitude: coords.Longitude, Timezone: "Asia/Kolkata"},
		DaysRequested: days,
		DateRange:     weather.DateRange{Start: "2026-10-15", End: "2026-10-15"},
	}
	for i := 0; i < days; i++ {
		fc.Days = append(fc.Days, weather.Day{Date: "2026-10-15", TempMax: &hi, TempMin: &lo, Condition: "Clear sky"})
	}
	return fc, nil
}

var errUpstream = errors.New("weather provider unavailable: dial tcp: i/o timeout")
