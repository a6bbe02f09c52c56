package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gubarz/mdifdef/internal/directive"
	"github.com/spf13/viper"
)

func TestLoadFlags(t *testing.T) {
	dir := t.TempDir()
	flagsFile := filepath.Join(dir, "flags")
	if err := os.WriteFile(flagsFile, []byte("linux, x86_64\n\nbeta,,stable  docs\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		flagsFile string
		extra     []string
		expected  []string
	}{
		{
			name:     "nothing",
			expected: []string{},
		},
		{
			name:     "extra only",
			extra:    []string{"a,b", "c"},
			expected: []string{"a", "b", "c"},
		},
		{
			name:      "file only",
			flagsFile: flagsFile,
			expected:  []string{"beta", "docs", "linux", "stable", "x86_64"},
		},
		{
			name:      "file and extra merged",
			flagsFile: flagsFile,
			extra:     []string{"linux", "Linux"},
			expected:  []string{"Linux", "beta", "docs", "linux", "stable", "x86_64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := LoadFlags(tt.flagsFile, tt.extra)
			if err != nil {
				t.Fatalf("LoadFlags: %v", err)
			}
			if got := flags.Sorted(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLoadFlagsMissingFile(t *testing.T) {
	_, err := LoadFlags(filepath.Join(t.TempDir(), "absent"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestInitDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := GetSentinel(); got != "@" {
		t.Errorf("expected default sentinel @, got %q", got)
	}
	if !GetCheckMisuse() {
		t.Errorf("expected misuse check on by default")
	}
	if got := GetFormat(); got != "text" {
		t.Errorf("expected text format, got %q", got)
	}
	if got := GetLogLevel(); got != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", got)
	}
	if got := GetExtraFlags(); len(got) != 0 {
		t.Errorf("expected no extra flags, got %v", got)
	}
}

func TestInitEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MDIFDEF_SENTINEL", "%")
	t.Setenv("MDIFDEF_CHECK_MISUSE", "false")
	t.Setenv("MDIFDEF_FLAGS", "a,b c")
	t.Setenv("MDIFDEF_LOG_LEVEL", "debug")

	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := GetSentinel(); got != "%" {
		t.Errorf("expected sentinel %%, got %q", got)
	}
	if GetCheckMisuse() {
		t.Errorf("expected misuse check off")
	}
	if got := GetLogLevel(); got != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", got)
	}
	flags, err := ActiveFlags()
	if err != nil {
		t.Fatalf("ActiveFlags: %v", err)
	}
	if got := flags.Sorted(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected flags %v", got)
	}

	p, err := NewProcessor()
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	out := p.Evaluate("%if_a yes @if %end", flags)
	if out.Kind != directive.Kept || out.Text != "yes @if " {
		t.Errorf("unexpected outcome %s %q", out.Kind, out.Text)
	}
}

func TestNewProcessorRejectsBadSentinel(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	for _, s := range []string{"", "@@", "a"} {
		viper.Set("sentinel", s)
		if _, err := NewProcessor(); !errors.Is(err, directive.ErrInvalidSentinel) {
			t.Errorf("sentinel %q: expected ErrInvalidSentinel, got %v", s, err)
		}
	}
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandTilde("~/flags.txt"); got != filepath.Join(home, "flags.txt") {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := expandTilde("/abs/flags"); got != "/abs/flags" {
		t.Errorf("absolute path changed: %q", got)
	}
	if got := expandTilde(""); got != "" {
		t.Errorf("empty path changed: %q", got)
	}
}
