package mapsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"trainplandev/logger"
)

func testLogger() *logger.LogMiddleware {
	return logger.Connect(logger.LoggerConnectProps{})
}

func TestConnectWithoutKey(t *testing.T) {
	m := Connect(context.Background(), MapsConnectProps{Logger: testLogger()})

	if m.Configured() {
		t.Error("client should not be configured without an API key")
	}

	if _, err := m.NearbySearch(context.Background(), 0, 0, 2000, "gym"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NearbySearch err = %v, want ErrNotConfigured", err)
	}
	if _, err := m.ReverseGeocode(context.Background(), 0, 0); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ReverseGeocode err = %v, want ErrNotConfigured", err)
	}
}

func TestNearbySearchNormalizesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/place/nearbysearch/json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "p1",
					"name": "朝阳公园",
					"vicinity": "朝阳区朝阳公园南路1号",
					"geometry": {"location": {"lat": 39.93, "lng": 116.47}},
					"rating": 4.6,
					"types": ["park", "point_of_interest"]
				}
			]
		}`))
	}))
	defer server.Close()

	m := Connect(context.Background(), MapsConnectProps{Logger: testLogger(), APIKey: "test-key", BaseURL: server.URL})
	if !m.Configured() {
		t.Fatal("client should be configured")
	}

	places, err := m.NearbySearch(context.Background(), 39.9, 116.4, 2000, "park")
	if err != nil {
		t.Fatalf("NearbySearch failed: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("places = %d, want 1", len(places))
	}

	place := places[0]
	if place.PlaceID != "p1" || place.Name != "朝阳公园" {
		t.Errorf("place = %+v", place)
	}
	if place.Address != "朝阳区朝阳公园南路1号" {
		t.Errorf("address = %q, want vicinity", place.Address)
	}
	if place.Latitude != 39.93 || place.Longitude != 116.47 {
		t.Errorf("location = %v,%v", place.Latitude, place.Longitude)
	}
}

func TestReverseGeocodeCityPreference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"formatted_address": "北京市朝阳区某街道1号",
					"address_components": [
						{"long_name": "朝阳区", "short_name": "朝阳区", "types": ["administrative_area_level_2", "political"]},
						{"long_name": "北京市", "short_name": "北京市", "types": ["locality", "political"]},
						{"long_name": "中国", "short_name": "CN", "types": ["country", "political"]}
					],
					"geometry": {"location": {"lat": 39.9, "lng": 116.4}, "location_type": "APPROXIMATE"},
					"place_id": "g1",
					"types": ["street_address"]
				}
			]
		}`))
	}))
	defer server.Close()

	m := Connect(context.Background(), MapsConnectProps{Logger: testLogger(), APIKey: "test-key", BaseURL: server.URL})

	address, err := m.ReverseGeocode(context.Background(), 39.9, 116.4)
	if err != nil {
		t.Fatalf("ReverseGeocode failed: %v", err)
	}

	// locality beats administrative_area_level_2.
	if address.City != "北京市" {
		t.Errorf("city = %q, want 北京市", address.City)
	}
	if address.FormattedAddress != "北京市朝阳区某街道1号" {
		t.Errorf("formatted address = %q", address.FormattedAddress)
	}
	if address.Components["district"] != "朝阳区" {
		t.Errorf("district = %q, want 朝阳区", address.Components["district"])
	}
	if address.Latitude != 39.9 || address.Longitude != 116.4 {
		t.Errorf("coordinates = %v,%v", address.Latitude, address.Longitude)
	}
}

func TestReverseGeocodeNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	m := Connect(context.Background(), MapsConnectProps{Logger: testLogger(), APIKey: "test-key", BaseURL: server.URL})

	if _, err := m.ReverseGeocode(context.Background(), 0, 0); err == nil {
		t.Fatal("expected an error with no geocoding results")
	}
}
