// Package config holds the run configuration of biomail.
//
// A Config starts from NewConfig defaults, is overlaid with the optional
// YAML file (.biomail, see LoadConfigFile and Config.Apply) and finally
// with command line flags. Validate is called once before any browser or
// network activity.
//
// Credentials are not part of Config. LoadCredentials reads them from
// INSTAGRAM_USERNAME and INSTAGRAM_PASSWORD, after loading an optional
// .env file, and fails with ErrMissingCredentials when either is unset.
//
// Selectors holds the per-field fallback chains used on profile pages.
// They can be overridden from the config file when the platform markup
// changes, without rebuilding the binary.
package config
