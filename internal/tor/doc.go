// Package tor routes external website requests through a SOCKS5 proxy.
//
// Client wraps a SOCKS5 dialer for a user supplied proxy address and
// builds HTTP transports on top of it. EmbeddedTor starts a private Tor
// daemon with tornago and hands its SOCKS port to a Client, so website
// fetches can leave through Tor without a system-wide installation.
//
// Only the external website fetcher uses this package; the browser
// session keeps its own proxy setting.
package tor
