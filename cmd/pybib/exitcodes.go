package main

// Exit codes shared by all commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (runtime failure)
	ExitInputError  = 2 // Usage error (unknown kind, unreadable input)
	ExitLookupError = 3 // One or more identifiers failed to resolve
)
