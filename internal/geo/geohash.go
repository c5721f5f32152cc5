// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

// Package geo maps coordinates to fixed-precision geohash cells.
//
// Two points inside a bounding box whose corner geohashes share a prefix are
// themselves in cells sharing that prefix, so the query planner can reduce a
// 2D range to a 1D prefix enumeration. The enumerated cells cover the box but
// may slightly exceed it.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmcloughlin/geohash"
)

// Precision is the geohash length used throughout the index. 12 characters
// resolve to roughly one metre. Every writer and reader must use the same
// value or prefix lookups would miss cells.
const Precision = 12

// Alphabet is the standard base-32 geohash alphabet. The query planner scans
// all 32 length-1 prefixes when a bounding box is so large that its corners
// share no prefix.
const Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// ErrInvalidCoordinate reports a latitude or longitude outside the valid
// range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Encode returns the Precision-length geohash of the given point.
func Encode(lat, lng float64) (string, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return "", fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return "", fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, lng)
	}
	return geohash.EncodeWithPrecision(lat, lng, Precision), nil
}

// CommonPrefix returns the longest shared prefix of two geohashes. Identical
// inputs yield the full string; inputs that disagree at the first character
// yield "".
func CommonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
