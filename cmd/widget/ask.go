package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"Zelvix/pkg/widget"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relayURL, _ := cmd.Flags().GetString("relay")
		name, _ := cmd.Flags().GetString("name")

		msg := strings.Join(args, " ")
		if name != "" {
			msg = name + ": " + msg
		}
		reply, err := widget.NewClient(relayURL, nil).Chat(cmd.Context(), msg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	askCmd.Flags().String("name", "", "display name to prefix the message with")
}
