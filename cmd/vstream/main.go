package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstream/internal/config"
	"github.com/vango-dev/vstream/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌─┐┌┬┐┬─┐┌─┐┌─┐┌┬┐
  ╚╗╔╝└─┐ │ ├┬┘├┤ ├─┤│││
   ╚╝ └─┘ ┴ ┴└─└─┘┴ ┴┴ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vstream",
		Short: "Streaming server-side rendering with Suspense boundaries",
		Long: `vstream renders component trees to HTML and streams them.

The shell is sent as soon as every synchronous part of the page is ready.
Suspense boundaries show their fallback first and are patched in place
as their async components resolve.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to "+config.ConfigFileName)

	rootCmd.AddCommand(
		serveCmd(),
		renderCmd(),
		exportCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads --config when given, otherwise vstream.json in the
// working directory if present, otherwise the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
