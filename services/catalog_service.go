package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go-places/models"
	"go-places/utils/logger"
	"go-places/utils/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"os"
)

const (
	catalogGeoKey     = "places:geo"
	catalogKeyPrefix  = "place:"
	catalogMaxResults = 50
)

// geoIndex is the part of Redis the catalog uses: a GEO set of place ids and
// one hash per place holding its JSON payload.
type geoIndex interface {
	Reset(ctx context.Context) error
	Add(ctx context.Context, id string, coordinate models.Coordinate, payload []byte) error
	// Nearby returns ids within radiusMeters of center, nearest first.
	Nearby(ctx context.Context, center models.Coordinate, radiusMeters float64, count int) ([]string, error)
	Payload(ctx context.Context, id string) (string, error)
	Close() error
}

type redisGeoIndex struct {
	client *redis.Client
}

func (r *redisGeoIndex) Reset(ctx context.Context) error {
	return r.client.Del(ctx, catalogGeoKey).Err()
}

func (r *redisGeoIndex) Add(ctx context.Context, id string, coordinate models.Coordinate, payload []byte) error {
	// Payload first, so an indexed id always has data behind it
	if err := r.client.HSet(ctx, catalogKeyPrefix+id, "data", payload).Err(); err != nil {
		return err
	}
	return r.client.GeoAdd(ctx, catalogGeoKey, &redis.GeoLocation{
		Name:      id,
		Longitude: coordinate.Longitude,
		Latitude:  coordinate.Latitude,
	}).Err()
}

func (r *redisGeoIndex) Nearby(ctx context.Context, center models.Coordinate, radiusMeters float64, count int) ([]string, error) {
	locations, err := r.client.GeoSearchLocation(ctx, catalogGeoKey, nearbyQuery(center, radiusMeters, count)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(locations))
	for _, location := range locations {
		ids = append(ids, location.Name)
	}
	return ids, nil
}

func (r *redisGeoIndex) Payload(ctx context.Context, id string) (string, error) {
	return r.client.HGet(ctx, catalogKeyPrefix+id, "data").Result()
}

func (r *redisGeoIndex) Close() error {
	return r.client.Close()
}

// nearbyQuery builds a GEOSEARCH around center, radius in meters, sorted
// nearest first.
func nearbyQuery(center models.Coordinate, radiusMeters float64, count int) *redis.GeoSearchLocationQuery {
	return &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  center.Longitude,
			Latitude:   center.Latitude,
			Radius:     radiusMeters,
			RadiusUnit: "m",
			Sort:       "ASC",
			Count:      count,
		},
		WithDist: true,
	}
}

// CatalogService answers nearby searches from a Redis GEO index that is
// seeded from the Mongo collection of places.
type CatalogService struct {
	client     *mongo.Client
	collection *mongo.Collection
	index      geoIndex
}

type CatalogOptions struct {
	MongoURI  string
	Database  string
	RedisAddr string
	RedisDB   int
	SeedFile  string
}

// NewCatalogService connects to Mongo and Redis, seeds Mongo from the seed
// file when the collection is empty and rebuilds the Redis index. On error
// every connection opened so far is closed again.
func NewCatalogService(ctx context.Context, opts CatalogOptions) (*CatalogService, error) {
	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	service := &CatalogService{
		client:     client,
		collection: client.Database(opts.Database).Collection("places"),
	}

	// Check MongoDB connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, service.closeAfter(fmt.Errorf("mongo ping: %w", err))
	}
	logger.L().Info("connected to MongoDB", "database", opts.Database)

	// Initialize Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr: opts.RedisAddr,
		DB:   opts.RedisDB,
	})
	service.index = &redisGeoIndex{client: rdb}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, service.closeAfter(fmt.Errorf("redis ping: %w", err))
	}

	// Seed sample data if collection is empty
	count, err := service.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, service.closeAfter(fmt.Errorf("count places: %w", err))
	}
	if count == 0 {
		logger.L().Info("no places in MongoDB, seeding", "file", opts.SeedFile)
		if err := service.seedMongo(ctx, opts.SeedFile); err != nil {
			return nil, service.closeAfter(err)
		}
	}

	// Mirror every place into the Redis index
	if err := service.seedRedis(ctx); err != nil {
		return nil, service.closeAfter(err)
	}
	return service, nil
}

// Close releases the Redis client and disconnects from Mongo.
func (s *CatalogService) Close(ctx context.Context) error {
	var errs []error
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if s.client != nil {
		if err := s.client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}

// closeAfter closes the service after a failed setup step and returns cause.
func (s *CatalogService) closeAfter(cause error) error {
	if err := s.Close(context.Background()); err != nil {
		logger.L().Warn("catalog cleanup failed", "err", err)
	}
	return cause
}

// FindNearby returns catalog places within radius meters, nearest first.
// Places whose payload is missing or unreadable are skipped.
func (s *CatalogService) FindNearby(ctx context.Context, center models.Coordinate, radius float64) ([]models.CatalogPOI, error) {
	ids, err := s.index.Nearby(ctx, center, radius, catalogMaxResults)
	if err != nil {
		metrics.CatalogQueriesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("redis geosearch: %w", err)
	}

	// Resolve each id to its stored payload, keeping the index order
	results := make([]models.CatalogPOI, 0, len(ids))
	for _, id := range ids {
		poiJSON, err := s.index.Payload(ctx, id)
		if err != nil {
			logger.L().Warn("catalog place missing payload", "id", id, "err", err)
			continue
		}
		var poi models.CatalogPOI
		if err := json.Unmarshal([]byte(poiJSON), &poi); err != nil {
			logger.L().Warn("catalog place unreadable", "id", id, "err", err)
			continue
		}
		results = append(results, poi)
	}
	metrics.CatalogQueriesTotal.WithLabelValues("ok").Inc()
	logger.L().Debug("catalog nearby search", "found", len(results), "radius", radius)
	return results, nil
}

func (s *CatalogService) seedRedis(ctx context.Context) error {
	// Load all places from MongoDB
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("load places: %w", err)
	}
	defer cursor.Close(ctx)
	var pois []models.CatalogPOI
	if err := cursor.All(ctx, &pois); err != nil {
		return fmt.Errorf("decode places: %w", err)
	}

	seeded, err := s.indexPlaces(ctx, pois)
	if err != nil {
		return err
	}
	logger.L().Info("seeded places into Redis", "count", seeded)
	return nil
}

// indexPlaces rebuilds the index from pois and reports how many were
// indexed. Places without a usable location are skipped.
func (s *CatalogService) indexPlaces(ctx context.Context, pois []models.CatalogPOI) (int, error) {
	// Start from an empty GEO set so removed places disappear
	if err := s.index.Reset(ctx); err != nil {
		return 0, fmt.Errorf("reset geo index: %w", err)
	}
	seeded := 0
	for _, poi := range pois {
		coord, ok := poi.Location.Coordinate()
		if !ok {
			logger.L().Warn("skipping place without usable location", "id", poi.ID, "name", poi.Name)
			continue
		}
		poiJSON, err := json.Marshal(poi)
		if err != nil {
			logger.L().Warn("failed to marshal place", "id", poi.ID, "err", err)
			continue
		}
		if err := s.index.Add(ctx, poi.ID, coord, poiJSON); err != nil {
			logger.L().Warn("failed to index place", "id", poi.ID, "err", err)
			continue
		}
		seeded++
	}
	return seeded, nil
}

func (s *CatalogService) seedMongo(ctx context.Context, path string) error {
	pois, err := loadSeedFile(path)
	if err != nil {
		return err
	}
	if len(pois) == 0 {
		return nil
	}
	// Insert all places in one batch
	docs := make([]any, 0, len(pois))
	for _, poi := range pois {
		docs = append(docs, poi)
	}
	result, err := s.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("seed places: %w", err)
	}
	logger.L().Info("inserted places into MongoDB", "count", len(result.InsertedIDs))
	return nil
}

// loadSeedFile reads a JSON array of places, filling in missing ids and
// references.
func loadSeedFile(path string) ([]models.CatalogPOI, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	var pois []models.CatalogPOI
	if err := json.NewDecoder(file).Decode(&pois); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i := range pois {
		if pois[i].ID == "" {
			pois[i].ID = uuid.New().String()
		}
		if pois[i].Reference == "" {
			pois[i].Reference = pois[i].ID
		}
	}
	return pois, nil
}

// PlacesResponse mirrors the Google Places nearby-search response shape.
type PlacesResponse struct {
	Status  string        `json:"status"`
	Results []PlaceResult `json:"results"`
}

type PlaceResult struct {
	Geometry  PlaceGeometry `json:"geometry"`
	Reference string        `json:"reference"`
	PlaceID   string        `json:"place_id"`
	Name      string        `json:"name"`
	Vicinity  string        `json:"vicinity"`
	Types     []string      `json:"types,omitempty"`
}

type PlaceGeometry struct {
	Location PlaceLocation `json:"location"`
}

type PlaceLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPlacesResponse converts catalog places, skipping any without a usable
// location.
func NewPlacesResponse(pois []models.CatalogPOI) PlacesResponse {
	resp := PlacesResponse{Status: "OK", Results: make([]PlaceResult, 0, len(pois))}
	for _, poi := range pois {
		coord, ok := poi.Location.Coordinate()
		if !ok {
			continue
		}
		var types []string
		if poi.Type != "" {
			types = append(types, poi.Type)
		}
		resp.Results = append(resp.Results, PlaceResult{
			Geometry:  PlaceGeometry{Location: PlaceLocation{Lat: coord.Latitude, Lng: coord.Longitude}},
			Reference: poi.Reference,
			PlaceID:   poi.ID,
			Name:      poi.Name,
			Vicinity:  poi.Address,
			Types:     append(types, poi.Tags...),
		})
	}
	if len(resp.Results) == 0 {
		resp.Status = "ZERO_RESULTS"
	}
	return resp
}
