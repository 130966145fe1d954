// Package coincidence relates events to an external incidence signal.
//
// An Analyzer aligns every event window [z0, z1) with a list of incidence
// timestamps, then trains classify models on an embedding of the events to
// predict whether an event coincides with an incidence, or where inside
// the window the incidence falls.
package coincidence
