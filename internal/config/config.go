package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gubarz/mdifdef/internal/directive"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	FlagsFile   string   `mapstructure:"flags_file"`
	Flags       []string `mapstructure:"flags"`
	Sentinel    string   `mapstructure:"sentinel"`
	CheckMisuse bool     `mapstructure:"check_misuse"`
	Format      string   `mapstructure:"format"`
	LogLevel    string   `mapstructure:"log_level"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	viper.SetDefault("flags_file", "")
	viper.SetDefault("flags", []string{})
	viper.SetDefault("sentinel", string(directive.DefaultSentinel))
	viper.SetDefault("check_misuse", true)
	viper.SetDefault("format", "text") // text, json, yaml
	viper.SetDefault("log_level", "warn")

	// No SetConfigType: mdifdef.yaml and mdifdef.toml are both picked up.
	viper.SetConfigName("mdifdef")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "mdifdef"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("MDIFDEF")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// GetFlagsFile returns the flags file path with tilde expansion
func GetFlagsFile() string {
	return expandTilde(viper.GetString("flags_file"))
}

// GetExtraFlags returns flags given on the command line, in the config file
// or in MDIFDEF_FLAGS. Every entry may itself be a comma separated list.
func GetExtraFlags() []string {
	var flags []string
	for _, entry := range viper.GetStringSlice("flags") {
		flags = append(flags, directive.SplitFlags(entry)...)
	}
	return flags
}

// GetSentinel returns the directive marker
func GetSentinel() string {
	return viper.GetString("sentinel")
}

// GetCheckMisuse returns whether plain text is scanned for stray directives
func GetCheckMisuse() bool {
	return viper.GetBool("check_misuse")
}

// GetFormat returns the manual-mode report format
func GetFormat() string {
	return viper.GetString("format")
}

// GetLogLevel returns the level for stderr diagnostics; unknown names fall
// back to warn.
func GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
		return slog.LevelWarn
	}
	return level
}

// SetFormat sets the report format at runtime
func SetFormat(format string) {
	viper.Set("format", format)
	C.Format = format
}

// SetFlagsFile sets the flags file at runtime
func SetFlagsFile(path string) {
	viper.Set("flags_file", path)
	C.FlagsFile = path
}

// ============================================================================
// Flag Source
// ============================================================================

// LoadFlags merges the flags listed in flagsFile with extra. An empty
// flagsFile contributes nothing.
func LoadFlags(flagsFile string, extra []string) (directive.FlagSet, error) {
	var flags []string
	if flagsFile != "" {
		data, err := os.ReadFile(flagsFile)
		if err != nil {
			return directive.FlagSet{}, fmt.Errorf("reading flags file: %w", err)
		}
		flags = directive.SplitFlags(string(data))
	}
	for _, e := range extra {
		flags = append(flags, directive.SplitFlags(e)...)
	}
	return directive.NewFlagSet(flags...), nil
}

// ActiveFlags returns the flag set described by the configuration
func ActiveFlags() (directive.FlagSet, error) {
	return LoadFlags(GetFlagsFile(), GetExtraFlags())
}

// NewProcessor builds a directive processor from the configured sentinel and
// misuse check
func NewProcessor() (*directive.Processor, error) {
	sentinel := GetSentinel()
	if len(sentinel) != 1 {
		return nil, fmt.Errorf("%w: %q must be a single character", directive.ErrInvalidSentinel, sentinel)
	}
	p, err := directive.NewProcessor(sentinel[0])
	if err != nil {
		return nil, err
	}
	return p.WithMisuseCheck(GetCheckMisuse()), nil
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], string(filepath.Separator)))
		}
	}
	return path
}
