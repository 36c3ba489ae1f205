package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "frontdesk",
	Short: "AI receptionist backend for customer face recognition",
	Long: `Front Desk is the backend of an AI receptionist. It recognizes returning
customers from camera snapshots, registers unfamiliar faces, and extracts
identity fields from Vietnamese ID card photos.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
