// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package geo

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeKnownPoints(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want string
	}{
		{"jutland reference point", 57.64911, 10.40744, "u4pruydqqvj8"},
		{"null island", 0, 0, "s00000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.lat, tt.lng)
			if err != nil {
				t.Fatalf("Encode(%v, %v) error = %v", tt.lat, tt.lng, err)
			}
			if got != tt.want {
				t.Errorf("Encode(%v, %v) = %q, want %q", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestEncodeLengthAndAlphabet(t *testing.T) {
	gh, err := Encode(37.8025, -122.4058)
	if err != nil {
		t.Fatalf("Encode error = %v", err)
	}
	if len(gh) != Precision {
		t.Errorf("geohash length = %d, want %d", len(gh), Precision)
	}
	for _, c := range gh {
		if !strings.ContainsRune(Alphabet, c) {
			t.Errorf("geohash %q contains %q outside the base-32 alphabet", gh, c)
		}
	}
}

func TestEncodeInvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
	}{
		{"latitude too high", 90.1, 0},
		{"latitude too low", -90.1, 0},
		{"longitude too high", 0, 180.1},
		{"longitude too low", 0, -180.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.lat, tt.lng)
			if !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("Encode(%v, %v) error = %v, want ErrInvalidCoordinate", tt.lat, tt.lng, err)
			}
		})
	}
}

func TestEncodeBoundaryCoordinates(t *testing.T) {
	for _, p := range [][2]float64{{90, 180}, {-90, -180}, {90, -180}, {-90, 180}} {
		if _, err := Encode(p[0], p[1]); err != nil {
			t.Errorf("Encode(%v, %v) rejected a boundary coordinate: %v", p[0], p[1], err)
		}
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"identical", "9q8yyk8ytpxr", "9q8yyk8ytpxr", "9q8yyk8ytpxr"},
		{"shared city prefix", "9q8yyk8ytpxr", "9q8yym4fgjz1", "9q8yy"},
		{"disagree at first char", "9q8yyk8ytpxr", "u4pruydqqvj8", ""},
		{"single shared char", "9abc", "9zzz", "9"},
		{"empty inputs", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommonPrefix(tt.a, tt.b); got != tt.want {
				t.Errorf("CommonPrefix(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNearbyPointsSharePrefix(t *testing.T) {
	// Coit Tower and the Levi's Plaza office are a few hundred metres apart;
	// their cells must share a usable prefix for bounding-box planning.
	a, err := Encode(37.8025, -122.4058)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(37.80164, -122.402244)
	if err != nil {
		t.Fatal(err)
	}
	if prefix := CommonPrefix(a, b); len(prefix) < 4 {
		t.Errorf("common prefix of nearby points = %q, want at least 4 characters", prefix)
	}
}
