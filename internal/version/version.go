package version

// Version is set at build time with -ldflags "-X github.com/netxfw/saf/internal/version.Version=...".
// Version 在构建时通过 -ldflags 设置。
var Version = "dev"
