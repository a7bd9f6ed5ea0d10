package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths)
	ExitDataError   = 3 // Data error (malformed input, nothing to enrich)
	ExitAPIError    = 4 // Crossref or Open Library unavailable
	ExitNotFound    = 5 // Identifier or record not found
	ExitRateLimited = 6 // Crossref rate limit exceeded; retry later
)
