package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/auth"
	"github.com/spf13/cobra"
)

const (
	HashPasswordCmdName  = "hash-password"
	HashPasswordCmdShort = "Print an argon2id hash for the admin password"
	HashPasswordCmdLong  = `Read the admin password from stdin and print the argon2id hash to put in
admin.password_hash (or CARSHOP_ADMIN_PASSWORD_HASH).`
)

var HashPasswordCmd = &cobra.Command{
	Use:   HashPasswordCmdName,
	Short: HashPasswordCmdShort,
	Long:  HashPasswordCmdLong,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			return errors.New("password cannot be empty")
		}
		hash, err := auth.HashPassword(password, auth.DefaultHashParams)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
