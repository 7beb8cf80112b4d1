package config

// CLIOptions carries the root command's persistent flag values, shared
// across cmd/ subcommands without creating an import cycle back to the
// cmd package itself.
type CLIOptions struct {
	Debug     bool
	ConfigDir string
}
