// Package email finds and validates email addresses in free text.
//
// Extraction and validation are deliberately separate stages. Extract is a
// lexical scan: it returns every substring shaped like local@domain.tld and
// makes no claim about validity. NormalizeAndVerify lower-cases and trims
// the candidates and keeps only those that pass a stricter check of the
// local part, the host name labels and the top-level domain.
//
// The two stages do not agree on every string. "a@b.c" is never extracted
// because the scan requires a top-level domain of two or more letters, and
// it is also rejected by Validate. "logo@2x.png" is extracted, but Validate
// drops it because "png" is not an ICANN top-level domain.
package email
