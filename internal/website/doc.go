// Package website fetches external websites linked from profiles and
// reduces them to visible text.
//
// A failed fetch is never fatal: every transport error, non-2xx status or
// malformed URL is reported as ErrUnreachable, which callers log and treat
// as an empty contribution.
package website
