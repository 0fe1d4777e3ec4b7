// Package main provides the entry point for the biomail CLI.
//
// biomail collects public contact email addresses for a list of Instagram
// handles, either from the profile bio or from the website the profile
// links to.
//
// Usage:
//
//	biomail scrape --source profile-bio
//	biomail scrape --source external-website --input handles.txt --output emails.csv
//
// See --help for all available options.
package main

func main() {
	Execute()
}
