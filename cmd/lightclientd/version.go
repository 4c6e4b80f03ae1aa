package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print lightclientd's version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lightclientd version", Version)
	},
}
