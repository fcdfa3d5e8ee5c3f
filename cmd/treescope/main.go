package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treescope",
		Short: "treescope serves and inspects decision-tree explanations",
		Long:  `A tool to serve classifier-explanation sessions to dashboard views, and to trace, enumerate and decode surrogate decision trees from the command line`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "")
	rootCmd.AddCommand(versionCmd(), serveCmd(config), traceCmd(config), pathsCmd(config), decodeCmd(config))
	return rootCmd
}

func (rcc *rootCmdConfig) Logf(format string, a ...interface{}) {
	logger(rcc.verbose).Logf(format, a...)
}
