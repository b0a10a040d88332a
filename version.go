package agentforge

// Version is the release of the module. Builds override it with -ldflags.
var Version = "0.1.0"
