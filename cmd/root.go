package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the quickstart application
var rootCmd = &cobra.Command{
	Use:   "quickstart",
	Short: "Browse and edit your Google data in the browser",
	Long: `quickstart is a server-rendered web application over a user's Google
profile, contacts and contact groups, Google+ people, activities and comments,
and task lists and tasks.

Users sign in with Google. Every page talks to the Google APIs on behalf of
the signed-in user.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "quickstart version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
