package version

// Version is overridden at build time with -ldflags "-X github.com/bearcrabs/bookbot/internal/version.Version=...".
var Version = "dev"
