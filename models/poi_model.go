package models

import (
	"errors"
	"fmt"
	"github.com/paulmach/orb"
	"math"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat" bson:"lat"`
	Longitude float64 `json:"lon" bson:"lon"`
}

func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Point returns the coordinate as an orb point (lon, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

// POIRecord is one place as returned by the search provider. It is immutable
// once built.
type POIRecord struct {
	coordinate        Coordinate
	externalReference string
	name              string
	address           string
}

func NewPOIRecord(coordinate Coordinate, externalReference, name, address string) (POIRecord, error) {
	if !coordinate.Valid() {
		return POIRecord{}, fmt.Errorf("%w: lat=%f, lon=%f", ErrInvalidCoordinate, coordinate.Latitude, coordinate.Longitude)
	}
	return POIRecord{
		coordinate:        coordinate,
		externalReference: externalReference,
		name:              name,
		address:           address,
	}, nil
}

func (r POIRecord) Coordinate() Coordinate    { return r.coordinate }
func (r POIRecord) ExternalReference() string { return r.externalReference }
func (r POIRecord) Name() string              { return r.name }
func (r POIRecord) Address() string           { return r.address }

// CatalogPOI is the stored form of a place in the catalog backend.
type CatalogPOI struct {
	ID          string   `json:"id" bson:"_id,omitempty"`
	Reference   string   `json:"reference" bson:"reference"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	Type        string   `json:"type" bson:"type"`
	Location    GeoPoint `json:"location" bson:"location"`
	Tags        []string `json:"tags" bson:"tags"`
	Address     string   `json:"address" bson:"address"`
}

// GeoPoint is a GeoJSON point; Coordinates are [lon, lat].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// Coordinate converts the point, reporting false when it is malformed.
func (g GeoPoint) Coordinate() (Coordinate, bool) {
	if len(g.Coordinates) < 2 {
		return Coordinate{}, false
	}
	c := CoordinateFromPoint(orb.Point{g.Coordinates[0], g.Coordinates[1]})
	return c, c.Valid()
}
