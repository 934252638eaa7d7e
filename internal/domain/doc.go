// Package domain models the BSWC forecast-verification rules.
//
// # Contest
//
// Participants submit one or more GeoJSON polygons per contest day, predicting
// where severe-weather hazards (hail, wind, tornado) will occur. Observers
// submit point reports with coordinates and a severity flag. A scoring pass
// checks each report against the participant's polygon set and accumulates a
// per-hazard tally of hits, misses, significant-severity hits, and points.
//
// # Scoring window
//
// A contest day runs deadline-to-deadline, not midnight-to-midnight. With the
// default 11h deadline in the contest's fixed UTC-3 offset, day 2025-06-10
// covers [2025-06-10T11:00-03:00, 2025-06-11T11:00-03:00). The offset is fixed
// on purpose: the contest ignores DST, so every window is exactly 24 hours.
//
// # Point tables
//
// Per-hazard weights, significant-severity bonuses, and out-of-polygon
// penalties (the penalty applies once per outside report):
//
//	hail:    +5 inside | +2 SS bonus | -3 outside
//	wind:    +7 inside | +3 SS bonus | -3 outside
//	tornado: +10 inside | +4 SS bonus | -3 outside
//
// Totals may go negative; nothing is clamped.
//
// # Severity encoding
//
// Reports carry severity as a short code: "SS" marks a significant event,
// "NOR" (or anything unrecognized) is normal. Matching is trimmed and
// case-insensitive.
//
// # Geometry convention
//
// A report exactly on a polygon edge counts as inside (the orb/planar
// containment convention). All submitted polygons are tested against every
// hazard's reports; the contest does not scope polygons per hazard type.
package domain
