// Package instagram reads profile snapshots through a logged-in browser
// session.
//
// The platform's markup uses generated class names that drift without
// notice, so every field is resolved through its own Chain: an ordered list
// of Strategy values where the first plausible result wins. Fields are
// independent; a field that no strategy can locate is simply left empty.
//
// Fetcher owns the login flow and the per-profile navigation. Parser turns
// a rendered page into a model.Profile and has no browser dependency, which
// keeps the selector logic testable against static HTML.
package instagram
