package models

import (
	"math"
	"sort"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceTo measures the straight-line distance to other in raw coordinate
// degrees. The simulator works entirely in degree space, not meters.
func (l Location) DistanceTo(other Location) float64 {
	dLat := other.Lat - l.Lat
	dLng := other.Lng - l.Lng
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// StepToward returns the point reached by covering the given fraction of the
// remaining distance to target.
func (l Location) StepToward(target Location, fraction float64) Location {
	return Location{
		Lat: l.Lat + (target.Lat-l.Lat)*fraction,
		Lng: l.Lng + (target.Lng-l.Lng)*fraction,
	}
}

// Waypoints is the fixed table of named places trips can run between.
var Waypoints = map[string]Location{
	"University of Venda Main Gate":   {Lat: -22.9845, Lng: 30.4990},
	"Thavhani Mall":                   {Lat: -22.9730, Lng: 30.4780},
	"Khoroni Hotel & Casino":          {Lat: -22.9650, Lng: 30.4800},
	"Sibasa Shopping Centre":          {Lat: -22.9560, Lng: 30.4880},
	"University of Venda Sports Hall": {Lat: -22.9860, Lng: 30.4950},
	"Univen Library":                  {Lat: -22.9855, Lng: 30.4975},
	"Golgotta":                        {Lat: -22.9780, Lng: 30.4910},
	"Makwarela":                       {Lat: -22.9480, Lng: 30.4950},
	"Shayandima":                      {Lat: -22.9690, Lng: 30.4570},
	"Bernard Ncube Residence":         {Lat: -22.9870, Lng: 30.4980},
	"Riverside Residence":             {Lat: -22.9820, Lng: 30.5050},
}

// DriverStart is where every accepted trip's driver begins, in Sibasa.
var DriverStart = Location{Lat: -22.955, Lng: 30.485}

// WaypointNames returns the named places in stable sorted order.
func WaypointNames() []string {
	names := make([]string, 0, len(Waypoints))
	for name := range Waypoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
