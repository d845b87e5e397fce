package venueapi

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/umahmood/haversine"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"trainplandev/logger"
	"trainplandev/mapsapi"
)

const (
	DefaultRadius     = 2000
	DefaultMaxResults = 5
)

// Location is a latitude/longitude pair in degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Venue is one ranked search result. DistanceMeters is always computed
// locally from coordinates, never taken from the provider, so ordering is
// consistent regardless of where the result came from.
type Venue struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Distance       string   `json:"distance"`
	DistanceMeters int      `json:"distance_meters"`
	Rating         float32  `json:"rating"`
	PlaceID        string   `json:"place_id"`
	Types          []string `json:"types"`
	Location       Location `json:"location"`
}

// VenueResponse is the tool contract consumed by the agent. Unlike the
// weather tool this one surfaces errors: with no Places credential there is
// nothing meaningful to substitute.
type VenueResponse struct {
	Status       string    `json:"status"`
	Venues       []Venue   `json:"venues"`
	SportType    string    `json:"sport_type,omitempty"`
	Location     *Location `json:"location,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// placesClient is the slice of the maps client this package needs.
type placesClient interface {
	Configured() bool
	NearbySearch(ctx context.Context, latitude, longitude float64, radius uint, placeType string) ([]mapsapi.Place, error)
}

type placeTypeEntry struct {
	sport string
	types []string
}

// sportPlaceTypes maps sports to Places categories. Ordered: declaration
// order is the tie-break for substring matches, and within one sport the
// category order decides which search's metadata wins for duplicated places.
var sportPlaceTypes = []placeTypeEntry{
	{"长跑", []string{"park", "route"}},
	{"跑步", []string{"park", "route"}},
	{"running", []string{"park", "route"}},
	{"游泳", []string{"swimming_pool", "gym"}},
	{"swimming", []string{"swimming_pool", "gym"}},
	{"力量训练", []string{"gym", "health"}},
	{"健身", []string{"gym", "health"}},
	{"gym", []string{"gym", "health"}},
	{"瑜伽", []string{"gym", "yoga"}},
	{"yoga", []string{"gym", "yoga"}},
	{"骑行", []string{"park", "route", "bicycle_store"}},
	{"自行车", []string{"park", "route", "bicycle_store"}},
	{"cycling", []string{"park", "route", "bicycle_store"}},
	{"篮球", []string{"basketball_court", "gym"}},
	{"羽毛球", []string{"gym", "sports_complex"}},
	{"爬山", []string{"park", "natural_feature"}},
}

var defaultPlaceTypes = []string{"gym", "park"}

type VenuesConnectProps struct {
	Logger *logger.LogMiddleware
	Maps   placesClient
}

// Venues ranks training venues near a coordinate for a given sport.
type Venues struct {
	logger *logger.LogMiddleware
	maps   placesClient
}

func Connect(ctx context.Context, args VenuesConnectProps) *Venues {
	tracer := otel.Tracer("venueapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	span.SetAttributes(attribute.Bool("maps_configured", args.Maps.Configured()))
	args.Logger.Logger(ctx).Info("[VenueAPI] Venue search ready", zap.Bool("maps_configured", args.Maps.Configured()))

	return &Venues{logger: args.Logger, maps: args.Maps}
}

// SearchNearby finds up to maxResults venues for the sport within radius
// meters of the coordinate, ordered by distance then rating. Per-category
// provider failures are absorbed; a missing credential yields an explicit
// error result.
func (v *Venues) SearchNearby(ctx context.Context, latitude, longitude float64, sportType string, radius uint, maxResults int) VenueResponse {
	tracer := otel.Tracer("venueapi/SearchNearby")
	ctx, span := tracer.Start(ctx, "SearchNearby")
	defer span.End()

	if radius == 0 {
		radius = DefaultRadius
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	span.SetAttributes(
		attribute.Float64("latitude", latitude),
		attribute.Float64("longitude", longitude),
		attribute.String("sport_type", sportType),
		attribute.Int("radius", int(radius)),
		attribute.Int("max_results", maxResults),
	)

	if !v.maps.Configured() {
		v.logger.Logger(ctx).Warn("[VenueAPI] Google Maps API key not found")
		return VenueResponse{
			Status:       "error",
			Venues:       []Venue{},
			ErrorMessage: "Google Maps API key not configured",
		}
	}

	placeTypes := mapSportToPlaceTypes(sportType)
	span.SetAttributes(attribute.StringSlice("place_types", placeTypes))

	allVenues := make([]Venue, 0)
	seenPlaceIDs := make(map[string]bool)
	failedTypes := 0

	for _, placeType := range placeTypes {
		places, err := v.maps.NearbySearch(ctx, latitude, longitude, radius, placeType)
		if err != nil {
			span.RecordError(err)
			v.logger.Logger(ctx).Warn("[VenueAPI] Place type search failed, skipping",
				zap.String("place_type", placeType),
				zap.Error(err),
			)
			failedTypes++
			continue
		}

		for _, place := range places {
			if place.PlaceID == "" || seenPlaceIDs[place.PlaceID] {
				continue
			}
			seenPlaceIDs[place.PlaceID] = true
			allVenues = append(allVenues, v.buildVenue(latitude, longitude, place))
		}
	}

	if failedTypes == len(placeTypes) && len(allVenues) == 0 {
		return VenueResponse{
			Status:       "error",
			Venues:       []Venue{},
			ErrorMessage: fmt.Sprintf("all place searches failed for sport type %q", sportType),
		}
	}

	sort.SliceStable(allVenues, func(i, j int) bool {
		if allVenues[i].DistanceMeters != allVenues[j].DistanceMeters {
			return allVenues[i].DistanceMeters < allVenues[j].DistanceMeters
		}
		return allVenues[i].Rating > allVenues[j].Rating
	})

	if len(allVenues) > maxResults {
		allVenues = allVenues[:maxResults]
	}

	v.logger.Logger(ctx).Info("[VenueAPI] Venue search completed",
		zap.String("sport_type", sportType),
		zap.Int("venues", len(allVenues)),
	)

	return VenueResponse{
		Status:    "success",
		Venues:    allVenues,
		SportType: sportType,
		Location:  &Location{Latitude: latitude, Longitude: longitude},
	}
}

func (v *Venues) buildVenue(latitude, longitude float64, place mapsapi.Place) Venue {
	name := place.Name
	if name == "" {
		name = "未知地点"
	}

	meters := distanceMeters(latitude, longitude, place.Latitude, place.Longitude)

	return Venue{
		Name:           name,
		Address:        place.Address,
		Distance:       formatDistance(meters),
		DistanceMeters: int(math.Round(meters)),
		Rating:         place.Rating,
		PlaceID:        place.PlaceID,
		Types:          place.Types,
		Location:       Location{Latitude: place.Latitude, Longitude: place.Longitude},
	}
}

// mapSportToPlaceTypes resolves a sport to Places categories: exact match,
// then substring either direction over lowercased keys in table order, else
// the gym/park default.
func mapSportToPlaceTypes(sportType string) []string {
	for _, entry := range sportPlaceTypes {
		if entry.sport == sportType {
			return entry.types
		}
	}

	lowered := strings.ToLower(sportType)
	for _, entry := range sportPlaceTypes {
		key := strings.ToLower(entry.sport)
		if strings.Contains(lowered, key) || strings.Contains(key, lowered) {
			return entry.types
		}
	}

	return defaultPlaceTypes
}

// distanceMeters is the great-circle distance between two coordinates.
func distanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lon1},
		haversine.Coord{Lat: lat2, Lon: lon2},
	)
	return km * 1000
}

// formatDistance renders meters below 1km as "NNN米" and kilometers above
// with one decimal as "N.N公里".
func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d米", int(meters))
	}
	return fmt.Sprintf("%.1f公里", meters/1000)
}
