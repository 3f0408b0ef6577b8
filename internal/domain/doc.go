// Package domain models live aircraft positions gathered from public ADS-B aggregators.
//
// # Data Sources
//
// Three upstream providers report the same physical aircraft in different shapes:
//
//	ADS-B Exchange   object array under "ac", units already knots/feet/ft-per-minute,
//	                 authoritative "mil" flag. Requires a RapidAPI key.
//	OpenSky Network  fixed-position state vectors under "states", SI units
//	                 (m/s, metres). Never reports a military flag.
//	airplanes.live   readsb-style object array under "ac", either around a point
//	                 (radius in nautical miles, max 250) or the global /mil list.
//
// Each adapter decodes its own raw payload type and produces [Aircraft] values; there is no
// shared base type across providers.
//
// # Unit Conversion
//
// Conversion happens exactly once, in the adapter that reads SI units:
//
//	velocity       m/s × 1.94384 → knots
//	vertical rate  m/s × 196.85  → feet per minute
//	altitude       m   × 3.28084 → feet
//
// Results are rounded half-up to whole numbers. See [MetresPerSecondToKnots].
//
// # Altitude
//
// Barometric altitude is either a number of feet or the literal "ground". [Altitude] keeps both
// cases and marshals back to the same JSON forms (number, "ground", or null when unknown).
//
// # Classification
//
// Military and NATO detection are permissive prefix/substring heuristics over curated lists in
// lists.go. False positives are preferred over false negatives. Classification only ever sets
// IsMilitary, never clears it. Loitering means a present ground speed in (0, 150) knots.
//
// # Identity
//
// The 24-bit ICAO address (hex) identifies a transponder for the current poll only. Records are
// rebuilt from scratch every cycle and never reconciled with earlier cycles.
package domain
