package main

// Exit codes. Resolution and write failures share ExitGeneral: the
// reference parser, network layer, and installer all report through the
// same top-level error return, so there is nothing stable to distinguish
// them by at the process boundary.
const (
	ExitSuccess = 0
	ExitGeneral = 1
)
