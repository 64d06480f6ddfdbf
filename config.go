package wiki

import "github.com/goliatone/go-wiki/internal/runtimeconfig"

var (
	ErrContentDirRequired      = runtimeconfig.ErrContentDirRequired
	ErrUserDirRequired         = runtimeconfig.ErrUserDirRequired
	ErrServerAddrRequired      = runtimeconfig.ErrServerAddrRequired
	ErrAuthMethodInvalid       = runtimeconfig.ErrAuthMethodInvalid
	ErrSessionTTLInvalid       = runtimeconfig.ErrSessionTTLInvalid
	ErrPageExtensionInvalid    = runtimeconfig.ErrPageExtensionInvalid
	ErrWatchRequiresCache      = runtimeconfig.ErrWatchRequiresCache
	ErrTimeoutInvalid          = runtimeconfig.ErrTimeoutInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrConfigFile              = runtimeconfig.ErrConfigFile
)

type (
	Config               = runtimeconfig.Config
	ServerConfig         = runtimeconfig.ServerConfig
	SessionConfig        = runtimeconfig.SessionConfig
	IndexConfig          = runtimeconfig.IndexConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	CommandsConfig       = runtimeconfig.CommandsConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	Duration             = runtimeconfig.Duration
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a HuJSON config file over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
