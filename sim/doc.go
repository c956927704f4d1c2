// Package sim contains the simulation modules that sit on top of the
// interface directory: a clock, a screen-text sink and a frame-rate tracker.
// Each is a static host module that publishes one key and, where it needs a
// collaborator, subscribes to another; none of them hold direct pointers to
// each other. Run drives them for a fixed number of frames.
package sim
