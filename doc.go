// Package pswarm implements particle swarm optimization over box-bounded
// continuous domains.
//
// A Swarm owns a fixed population of particles and advances them with the
// classic inertia-weight velocity update.  Particles are processed in a fixed
// stored order and the swarm-wide best is updated the moment any particle
// improves on it, so later particles within the same iteration are already
// attracted toward the newer best.  Runs are deterministic for a given
// configuration, seed, and objective.
//
// The objective is a plain func from position to value; lower is better.
// Evaluations that return NaN or +Inf never win a comparison and simply
// leave the recorded bests alone.
package pswarm
