package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"travelagent/tools/storage"
)

type Flight struct {
	FlightID      string `json:"flight_id"`
	Airline       string `json:"airline"`
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	Price         int    `json:"price"`
}

type Hotel struct {
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Stars         int      `json:"stars"`
	PricePerNight int      `json:"price_per_night"`
	Amenities     []string `json:"amenities"`
}

type Place struct {
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Type        string  `json:"type"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
}

// Dataset is one immutable snapshot of the lookup data. Nothing mutates a
// Dataset after it is loaded.
type Dataset struct {
	Flights []Flight
	Hotels  []Hotel
	Places  []Place
}

// LoadDataset reads and decodes the three datasets.
func LoadDataset(ctx context.Context, flights, hotels, places storage.State) (*Dataset, error) {
	ds := &Dataset{}
	if err := loadRecords(ctx, "flights", flights, &ds.Flights); err != nil {
		return nil, err
	}
	if err := loadRecords(ctx, "hotels", hotels, &ds.Hotels); err != nil {
		return nil, err
	}
	if err := loadRecords(ctx, "places", places, &ds.Places); err != nil {
		return nil, err
	}
	return ds, nil
}

func loadRecords[T any](ctx context.Context, name string, state storage.State, out *[]T) error {
	b, err := state.Load(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if *out == nil {
		*out = []T{}
	}
	return nil
}

// Store holds the process-wide dataset snapshot shared by every planning
// session. Reads never block; Reload swaps in a whole new snapshot.
type Store struct {
	current atomic.Pointer[Dataset]
	sources [3]storage.State
}

// NewStore wraps an already loaded dataset. The store cannot be reloaded.
func NewStore(ds *Dataset) *Store {
	if ds == nil {
		ds = &Dataset{}
	}
	s := &Store{}
	s.current.Store(ds)
	return s
}

// NewStoreFromStates loads the datasets once and remembers their sources so
// Reload can read them again.
func NewStoreFromStates(ctx context.Context, flights, hotels, places storage.State) (*Store, error) {
	ds, err := LoadDataset(ctx, flights, hotels, places)
	if err != nil {
		return nil, err
	}
	s := NewStore(ds)
	s.sources = [3]storage.State{flights, hotels, places}
	return s, nil
}

func (s *Store) Dataset() *Dataset {
	return s.current.Load()
}

// Reload re-reads every source. The previous snapshot is kept on failure.
func (s *Store) Reload(ctx context.Context) error {
	if s.sources[0] == nil {
		return fmt.Errorf("store has no sources to reload from")
	}
	ds, err := LoadDataset(ctx, s.sources[0], s.sources[1], s.sources[2])
	if err != nil {
		return fmt.Errorf("reload datasets: %w", err)
	}
	s.current.Store(ds)
	return nil
}
