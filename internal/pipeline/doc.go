// Package pipeline turns a list of handles into result rows.
//
// Each handle is carried through a Pipeline of Steps as a model.HandleJob:
// the profile is fetched, candidates are extracted from the bio or from the
// linked website, and the survivors of validation become rows. A step ends
// the job early by marking it skipped; that is how every per-handle absence
// (not found, no website, unreachable site) is expressed. Only a lost
// browser session or a cancelled context is returned as an error.
//
// Driver runs the pipeline for every handle strictly in input order, one at
// a time, and accumulates the rows into a model.Run.
package pipeline
