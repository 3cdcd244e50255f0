// Package nearest answers geographic lookups over the station registry.
package nearest

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/quakecore/imdb-cli/internal/geodesy"
	"github.com/quakecore/imdb-cli/internal/model"
	"github.com/quakecore/imdb-cli/internal/store"
)

// Finder performs read-only lookups against a store's station registry.
type Finder struct {
	store *store.Store
}

func New(st *store.Store) *Finder {
	return &Finder{store: st}
}

// Nearest returns the station with minimum great-circle distance to
// (lon, lat), with the computed distance in kilometres. On an exact tie the
// first station in identity order wins.
func (f *Finder) Nearest(ctx context.Context, lon, lat float64) (*model.StationDistance, error) {
	stations, err := f.store.AllStations(ctx)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, eris.Wrap(model.ErrStationNotFound, "nearest: store has no stations")
	}

	target := geom.Coord{lon, lat}
	best := model.StationDistance{
		Station: stations[0],
		Dist:    geodesy.Distance(target, geom.Coord{stations[0].Lon, stations[0].Lat}),
	}
	for _, st := range stations[1:] {
		d := geodesy.Distance(target, geom.Coord{st.Lon, st.Lat})
		if d < best.Dist {
			best = model.StationDistance{Station: st, Dist: d}
		}
	}
	return &best, nil
}

// Details returns one station by name or identity, or every station when
// neither selector is given. Supplying both is an error.
func (f *Finder) Details(ctx context.Context, name string, id int64) ([]model.Station, error) {
	switch {
	case name != "" && id != 0:
		return nil, eris.New("nearest: station name and id are mutually exclusive")
	case name != "":
		st, err := f.store.StationByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return []model.Station{*st}, nil
	case id != 0:
		st, err := f.store.StationByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []model.Station{*st}, nil
	default:
		return f.store.AllStations(ctx)
	}
}
