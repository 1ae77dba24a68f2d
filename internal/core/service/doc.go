// Package service runs the rotation engine.
//
// Rotation.Run drives one backup run: it prepares the current epoch,
// orders the intervals by priority and, for each interval that is due,
// allocates, populates and publishes a snapshot. The top interval is
// filled by a DataMover; every other interval is hardlinked from the
// latest snapshot of the interval just above it.
//
// Plan answers the same questions without touching the disk and
// Inventory lists what is on disk.
package service
