package mapsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"googlemaps.github.io/maps"

	"trainplandev/logger"
)

// ErrNotConfigured is returned by every call when no Maps API key was
// supplied. Callers surface it as an explicit error result; there is no
// meaningful synthetic substitute for real places.
var ErrNotConfigured = errors.New("Google Maps API key not configured")

type MapsConnectProps struct {
	Logger *logger.LogMiddleware
	APIKey string

	// BaseURL overrides the Maps API endpoint; used by tests.
	BaseURL string
}

// Maps wraps the Google Maps Platform client used for Places nearby search
// and reverse geocoding.
type Maps struct {
	logger    *logger.LogMiddleware
	client    *maps.Client
	semaphore *semaphore.Weighted
}

// Place is a normalized nearby-search result. Distance is deliberately
// absent: callers compute it themselves so sorting is consistent across
// providers.
type Place struct {
	PlaceID   string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Rating    float32
	Types     []string
}

// Address is a normalized reverse-geocoding result.
type Address struct {
	City             string            `json:"city"`
	FormattedAddress string            `json:"formatted_address"`
	Components       map[string]string `json:"address"`
	Latitude         float64           `json:"latitude"`
	Longitude        float64           `json:"longitude"`
}

func Connect(ctx context.Context, args MapsConnectProps) *Maps {
	tracer := otel.Tracer("mapsapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	maxWorkers := 10
	sem := semaphore.NewWeighted(int64(maxWorkers))
	span.SetAttributes(attribute.Int("maxWorkers", maxWorkers))

	if args.APIKey == "" {
		args.Logger.Logger(ctx).Warn("[MapsAPI] No API key configured, place lookups will return errors")
		return &Maps{logger: args.Logger, semaphore: sem}
	}

	options := []maps.ClientOption{
		maps.WithAPIKey(args.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	}
	if args.BaseURL != "" {
		options = append(options, maps.WithBaseURL(args.BaseURL))
	}

	client, err := maps.NewClient(options...)
	if err != nil {
		span.RecordError(err)
		args.Logger.Logger(ctx).Error("[MapsAPI] Could not create Maps client", zap.Error(err))
		return &Maps{logger: args.Logger, semaphore: sem}
	}

	args.Logger.Logger(ctx).Info("[MapsAPI] Maps client started")
	return &Maps{logger: args.Logger, client: client, semaphore: sem}
}

// Configured reports whether a usable Maps client exists.
func (m *Maps) Configured() bool {
	return m.client != nil
}

// NearbySearch runs one Places nearby search for a single place type around
// the given coordinate.
func (m *Maps) NearbySearch(ctx context.Context, latitude, longitude float64, radius uint, placeType string) ([]Place, error) {
	tracer := otel.Tracer("mapsapi/NearbySearch")
	ctx, span := tracer.Start(ctx, "NearbySearch")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("latitude", latitude),
		attribute.Float64("longitude", longitude),
		attribute.Int("radius", int(radius)),
		attribute.String("place_type", placeType),
	)

	if m.client == nil {
		return nil, ErrNotConfigured
	}

	if err := m.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer m.semaphore.Release(1)

	resp, err := m.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: latitude, Lng: longitude},
		Radius:   radius,
		Type:     maps.PlaceType(placeType),
		Language: "zh-CN",
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("nearby search for %q failed: %w", placeType, err)
	}

	places := make([]Place, 0, len(resp.Results))
	for _, result := range resp.Results {
		address := result.Vicinity
		if address == "" {
			address = result.FormattedAddress
		}
		places = append(places, Place{
			PlaceID:   result.PlaceID,
			Name:      result.Name,
			Address:   address,
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
			Rating:    result.Rating,
			Types:     result.Types,
		})
	}

	m.logger.Logger(ctx).Info("[MapsAPI] Nearby search completed",
		zap.String("place_type", placeType),
		zap.Int("results", len(places)),
	)
	return places, nil
}

// ReverseGeocode resolves a coordinate into a city and formatted address.
// City preference: locality, then district, then province.
func (m *Maps) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*Address, error) {
	tracer := otel.Tracer("mapsapi/ReverseGeocode")
	ctx, span := tracer.Start(ctx, "ReverseGeocode")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("latitude", latitude),
		attribute.Float64("longitude", longitude),
	)

	if m.client == nil {
		return nil, ErrNotConfigured
	}

	if err := m.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer m.semaphore.Release(1)

	results, err := m.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: latitude, Lng: longitude},
		Language: "zh-CN",
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}
	if len(results) == 0 {
		return nil, errors.New("no address found for the given coordinates")
	}

	result := results[0]
	components := make(map[string]string)
	for _, component := range result.AddressComponents {
		for _, componentType := range component.Types {
			switch componentType {
			case "locality":
				components["city"] = component.LongName
			case "administrative_area_level_1":
				components["province"] = component.LongName
			case "administrative_area_level_2":
				components["district"] = component.LongName
			case "country":
				components["country"] = component.LongName
			case "street_address", "route":
				components["street"] = component.LongName
			}
		}
	}

	city := components["city"]
	if city == "" {
		city = components["district"]
	}
	if city == "" {
		city = components["province"]
	}
	if city == "" {
		city = "未知城市"
	}

	return &Address{
		City:             city,
		FormattedAddress: result.FormattedAddress,
		Components:       components,
		Latitude:         latitude,
		Longitude:        longitude,
	}, nil
}
