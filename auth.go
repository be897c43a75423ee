package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/connradolisboa/todoist-vault-sync/internal/config"
	"github.com/connradolisboa/todoist-vault-sync/internal/todoistauth"
)

// localRedirectURL matches what a Todoist OAuth app registered for this
// CLI points its redirect URI at — a localhost address the user copies
// the "code" query parameter from, since this is a CLI with no way to
// receive the redirect itself.
const localRedirectURL = "http://localhost:8080/callback"

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Todoist authentication",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize this tool against your Todoist account",
		Long: `Walks through Todoist's OAuth2 authorization-code flow: prints a URL to
visit and approve access, then asks you to paste back the "code" query
parameter from the redirect so the access token can be exchanged and
saved.`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE:        runAuthLogin,
	}

	cmd.Flags().String("client-id", "", "Todoist OAuth client ID")
	cmd.Flags().String("client-secret", "", "Todoist OAuth client secret")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Remove the saved Todoist access token",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE:        runAuthLogout,
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Report whether a valid Todoist token is saved",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE:        runAuthWhoami,
	}
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	logger := buildLogger(nil)

	clientID, _ := cmd.Flags().GetString("client-id")
	clientSecret, _ := cmd.Flags().GetString("client-secret")

	if clientID == "" {
		return fmt.Errorf("auth login: --client-id is required")
	}

	tokenPath := resolveTokenPath()

	state := uuid.NewString()
	url := todoistauth.AuthCodeURL(clientID, localRedirectURL, state)

	fmt.Printf("Visit this URL to authorize access:\n\n  %s\n\n", url)
	fmt.Print("Paste the \"code\" query parameter from the redirect: ")

	code, err := readLine()
	if err != nil {
		return fmt.Errorf("auth login: reading code: %w", err)
	}

	ctx := cmd.Context()
	if err := todoistauth.ExchangeCode(ctx, clientID, clientSecret, tokenPath, code, logger); err != nil {
		return fmt.Errorf("auth login: %w", err)
	}

	fmt.Printf("Saved token to %s\n", tokenPath)

	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	logger := buildLogger(nil)
	tokenPath := resolveTokenPath()

	if err := todoistauth.Logout(tokenPath, logger); err != nil {
		return fmt.Errorf("auth logout: %w", err)
	}

	fmt.Println("Logged out.")

	return nil
}

func runAuthWhoami(cmd *cobra.Command, _ []string) error {
	logger := buildLogger(nil)
	tokenPath := resolveTokenPath()

	_, err := todoistauth.FromPath(cmd.Context(), "", "", tokenPath, logger)
	if errors.Is(err, todoistauth.ErrNotLoggedIn) {
		fmt.Println("Not logged in.")
		return nil
	}

	if err != nil {
		return fmt.Errorf("auth whoami: %w", err)
	}

	fmt.Printf("Logged in (token at %s).\n", tokenPath)

	return nil
}

// resolveTokenPath finds the token path without requiring vault.root — the
// auth commands run before a vault necessarily exists, so they skip the
// full override chain: the path comes from network.token_file_path in the
// file named by --config when that flag is set and the value is non-empty,
// and otherwise from config.DefaultTokenFilePath. Environment variables
// are not consulted.
func resolveTokenPath() string {
	if flagConfigPath != "" {
		if cfg, err := config.Load(flagConfigPath, buildLogger(nil)); err == nil && cfg.Network.TokenFilePath != "" {
			return cfg.Network.TokenFilePath
		}
	}

	return config.DefaultTokenFilePath()
}

func readLine() (string, error) {
	reader := bufio.NewReader(os.Stdin)

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}
