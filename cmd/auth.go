package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kani/internal/console"
	"kani/internal/provider"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in and store the account session",
	RunE:  authRun,
}

func authRun(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Fprint(os.Stderr, "login: ")
	login, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading login: %w", err)
	}
	fmt.Fprint(os.Stderr, "password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	login = strings.TrimSpace(login)
	password = strings.TrimSpace(password)
	if login == "" || password == "" {
		return fmt.Errorf("login and password are required")
	}

	if err := provider.Authenticate(client, cfg.Base, login, password); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	console.Infof("session stored")
	return nil
}
