package ports

// OutputConfig configures output format and behavior.
type OutputConfig struct {
	Format    OutputFormat
	Verbosity Verbosity
	Color     bool
	Path      string
}

// OutputFormat specifies the output format.
type OutputFormat string

// Available output formats.
const (
	OutputFormatConsole    OutputFormat = "console"
	OutputFormatJSON       OutputFormat = "json"
	OutputFormatThirdParty OutputFormat = "thirdparty"
)

// Verbosity controls output detail level.
type Verbosity string

// Available verbosity levels.
const (
	VerbosityQuiet   Verbosity = "quiet"
	VerbosityNormal  Verbosity = "normal"
	VerbosityVerbose Verbosity = "verbose"
	VerbosityDebug   Verbosity = "debug"
)

// DefaultOutputConfig returns console output with colors.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Format:    OutputFormatConsole,
		Verbosity: VerbosityNormal,
		Color:     true,
	}
}
