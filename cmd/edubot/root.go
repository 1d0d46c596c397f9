package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edubot",
	Short: "EduBot is a USSD maths tutor for primary school learners",
	Long: `EduBot serves an interactive USSD dialog (lessons, quizzes, and an AI
tutor chat) over the Africa's Talking gateway, with SMS as the out-of-band
channel for content that does not fit a USSD screen.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envFile, _ := cmd.Flags().GetString("env")
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env", ".env", "Path to an env file with configuration")
}
