// Package model defines the core data types shared across biomail.
//
// The types follow the life of a single run:
//
//   - Profile is the best-effort snapshot scraped from one profile page.
//     Every field is optional; an empty field means the page did not
//     expose it, which is a normal outcome.
//   - HandleJob is the mutable working state of one handle while it moves
//     through the pipeline steps.
//   - ResultRow is the unit of output: a verified email, the handle it
//     belongs to and the Source that produced it.
//   - Run aggregates the rows and per-handle outcomes of one invocation.
//
// Rows are only ever created from verified emails. Unvalidated candidates
// live in HandleJob.Candidates and never leave the pipeline.
package model
