package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/EasterCompany/dex-vmt-service/config"
	"github.com/EasterCompany/dex-vmt-service/language"
	"github.com/EasterCompany/dex-vmt-service/secrets"
)

// ANSI color codes for formatted output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

func main() {
	var cfgFile string
	var resolve bool

	cmd := &cobra.Command{
		Use:          "verify-config",
		Short:        "Check the dex-vmt-service configuration without starting the bot",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !verify(cmd, cmd.OutOrStdout(), cfgFile, resolve) {
				return fmt.Errorf("configuration has problems")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ~/Dexter/config/vmt.{yaml,json})")
	cmd.Flags().BoolVar(&resolve, "resolve-secrets", false, "look up ssm: references in AWS SSM")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type printer struct{ w io.Writer }

func (p printer) ok(format string, a ...any) {
	fmt.Fprintf(p.w, "  %s[OK]%s %s\n", ColorGreen, ColorReset, fmt.Sprintf(format, a...))
}

func (p printer) warn(format string, a ...any) {
	fmt.Fprintf(p.w, "  %s[WARN]%s %s\n", ColorYellow, ColorReset, fmt.Sprintf(format, a...))
}

func (p printer) fail(format string, a ...any) {
	fmt.Fprintf(p.w, "  %s[FAIL]%s %s\n", ColorRed, ColorReset, fmt.Sprintf(format, a...))
}

func verify(cmd *cobra.Command, w io.Writer, path string, resolve bool) bool {
	p := printer{w}
	fmt.Fprintf(w, "%s--- dex-vmt-service Config Verifier ---%s\n", ColorBlue, ColorReset)

	// 1. Read and decode
	fmt.Fprintf(w, "\nReading configuration...\n")
	v, err := config.New(path)
	if err != nil {
		p.fail("%v", err)
		return false
	}
	cfg, err := config.FromViper(v, path != "")
	if err != nil {
		p.fail("%v", err)
		return false
	}
	if used := v.ConfigFileUsed(); used != "" {
		p.ok("Loaded %s", used)
	} else {
		p.warn("No config file found; using defaults and environment only")
	}
	var strict config.Config
	if err := v.UnmarshalExact(&strict); err != nil {
		p.warn("Unrecognised keys: %v", err)
	}

	// 2. Secrets
	if cfg.HasSecretReferences() {
		if !resolve {
			p.warn("ssm: references found; they are resolved at start-up (use --resolve-secrets to check them)")
		} else {
			r, err := secrets.NewFromEnvironment(cmd.Context())
			if err == nil {
				err = cfg.ResolveSecrets(cmd.Context(), r)
			}
			if err != nil {
				p.fail("%v", err)
				return false
			}
			p.ok("All ssm: references resolved")
		}
	}

	passed := true

	// 3. Settings
	if err := cfg.Validate(); err != nil {
		p.fail("%v", err)
		passed = false
	} else {
		p.ok("Settings are valid (speech=%s, translation=%s)", cfg.Speech.Provider, cfg.Translation.Provider)
	}

	// 4. Language table
	if cfg.Translation.LanguageFile == "" {
		c, err := language.Default()
		if err != nil {
			p.fail("Built-in language table: %v", err)
			passed = false
		} else {
			p.ok("Using the built-in language table (%d languages)", c.Len())
		}
	} else if c, err := language.LoadFile(cfg.Translation.LanguageFile); err != nil {
		p.fail("%v", err)
		passed = false
	} else {
		p.ok("Loaded %d languages from %s", c.Len(), cfg.Translation.LanguageFile)
	}

	// 5. Decoder binary
	if bin, err := exec.LookPath(cfg.Speech.FFmpegPath); err != nil {
		p.warn("%s not found; only 16 kHz mono WAV clips can be decoded", cfg.Speech.FFmpegPath)
	} else {
		p.ok("Found decoder at %s", bin)
	}

	fmt.Fprintln(w, "\n--------------------------")
	if passed {
		fmt.Fprintf(w, "%s✅ Configuration looks correct.%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Fprintf(w, "%s❌ Some issues were found in the configuration.%s\n", ColorRed, ColorReset)
	}
	return passed
}
