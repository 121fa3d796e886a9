package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Chrezm/TsuserverDR/internal/auth"
)

// hashpassCmd prints a bcrypt hash suitable for the *_password config keys.
func hashpassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hashpass [password]",
		Short: "Hash a role password for the config file",
		Long: `Hash a role password with bcrypt. The output can be pasted into
mod_password, cm_password or gm_password. Without an argument the
password is read from the first line of stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
