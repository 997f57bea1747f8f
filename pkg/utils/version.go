// Package utils holds small helpers shared across the scraper that don't
// warrant a package of their own.
package utils

// Build metadata stamped via -ldflags by the release build; the zero values
// identify a local development build.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
