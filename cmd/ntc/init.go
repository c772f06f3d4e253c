package main

import (
	"fmt"
	"os"

	"github.com/notecourier/notecourier/internal/core"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Init",
	Long:  `Create a default .ntc/config in the current directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		config, err := core.InitConfigFromDirectory(cwd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Initialized empty configuration in %s/.ntc\n", config.RootDirectory)
		fmt.Println("Edit .ntc/config to declare your forum(s) before publishing.")
	},
}
