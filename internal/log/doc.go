// Package log provides slog loggers that never print credentials.
//
// biomail handles an account password, browser session cookies and,
// optionally, proxy URLs with embedded credentials. SecureHandler wraps any
// slog.Handler and replaces such values with MaskValue before they are
// written:
//
//   - attributes whose key names a credential (password, username,
//     cookie, sessionid, csrftoken, ...);
//   - attributes whose key contains a sensitive keyword
//     (e.g. "instagram_password", "auth_header");
//   - string values that look like secrets (bearer tokens, JWTs,
//     sessionid cookies, proxy URLs with user:pass).
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Info("logging in", "username", creds.Username) // username=***REDACTED***
package log
