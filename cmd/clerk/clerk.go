// Package clerkcmder
package clerkcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/counterware/clerk/cmd/clerk/chat"
	seedcmder "github.com/counterware/clerk/cmd/clerk/seed"
	servecmder "github.com/counterware/clerk/cmd/clerk/serve"
	versioncmder "github.com/counterware/clerk/cmd/version"
)

const clerkLongDesc string = `Clerk is a conversational shopping assistant over a product catalog.

Run services using:
  clerk serve          Run the API server
  clerk chat           Interactive chat session in the terminal
  clerk seed           Load a product catalog file into the stores`

const clerkShortDesc string = "Clerk - Conversational Catalog Assistant"

func NewClerkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clerk",
		Short: clerkShortDesc,
		Long:  clerkLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing config.toml")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
