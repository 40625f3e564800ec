package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meridian-labs/kickoff-cli/internal/adapters/driven/relay"
	"github.com/meridian-labs/kickoff-cli/internal/adapters/driving/oauth"
	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// callbackTimeout is how long connect waits for the browser redirect.
const callbackTimeout = 5 * time.Minute

var connectCmd = &cobra.Command{
	Use:   "connect [platform]",
	Short: "Connect a platform via OAuth",
	Long: `Run the OAuth authorization flow for a platform and store the tokens.

Platforms: record-store, task-board, doc-store

The first connect for a platform prompts for the OAuth app settings
(client ID, client secret, endpoints) and saves them to the config file.
Subsequent connects reuse the saved app.

Examples:
  kickoff connect record-store
  kickoff connect task-board --port 8484`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

var connectPort int

func init() {
	connectCmd.Flags().IntVar(&connectPort, "port", 0, "Callback port (0 = random available port)")
	rootCmd.AddCommand(connectCmd)
}

//nolint:gocognit // CLI interactive flow
func runConnect(cmd *cobra.Command, args []string) error {
	if tokenManager == nil || tokenRelay == nil || configStore == nil {
		return errors.New("token services not configured")
	}

	platform, err := domain.ParsePlatformID(args[0])
	if err != nil {
		return err
	}

	if err := ensureOAuthApp(cmd, platform); err != nil {
		return err
	}

	state, err := oauth.GenerateState()
	if err != nil {
		return fmt.Errorf("generating state: %w", err)
	}
	verifier := oauth.GenerateCodeVerifier()
	challenge := oauth.GenerateCodeChallenge(verifier)

	server := oauth.NewCallbackServer(connectPort, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting callback server: %w", err)
	}
	defer server.Stop() //nolint:errcheck

	tokenRelay.SetRedirectURL(platform, server.RedirectURI())

	authURL, err := tokenRelay.AuthCodeURL(platform, state, challenge)
	if err != nil {
		return err
	}

	cmd.Printf("Opening browser for %s authorization...\n", platform.DisplayName())
	if err := oauth.OpenBrowser(authURL); err != nil {
		cmd.Printf("Could not open browser. Visit this URL:\n\n  %s\n\n", authURL)
	}

	code, err := server.WaitForCode(callbackTimeout)
	if err != nil {
		return fmt.Errorf("waiting for authorization: %w", err)
	}

	if err := tokenManager.Connect(cmd.Context(), platform, code, verifier); err != nil {
		return err
	}

	cmd.Printf("Connected %s.\n", platform.DisplayName())
	return nil
}

// ensureOAuthApp makes sure the platform has OAuth app settings in
// configuration, prompting for them when missing.
func ensureOAuthApp(cmd *cobra.Command, platform domain.PlatformID) error {
	prefix := "oauth." + platform.String() + "."
	if configStore.GetString(prefix+"client_id") != "" {
		return nil
	}

	cmd.Printf("No OAuth app configured for %s. Let's set one up.\n\n", platform.DisplayName())
	reader := bufio.NewReader(os.Stdin)

	clientID, err := prompt(cmd, reader, "Client ID")
	if err != nil {
		return err
	}

	cmd.Print("Client secret: ")
	secretBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return fmt.Errorf("reading client secret: %w", err)
	}

	authURL, err := prompt(cmd, reader, "Authorization URL")
	if err != nil {
		return err
	}
	tokenURL, err := prompt(cmd, reader, "Token URL")
	if err != nil {
		return err
	}

	scopesRaw, err := prompt(cmd, reader, "Scopes (comma-separated, optional)")
	if err != nil {
		return err
	}
	var scopes []string
	for _, s := range strings.Split(scopesRaw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}

	settings := map[string]any{
		prefix + "client_id":     clientID,
		prefix + "client_secret": string(secretBytes),
		prefix + "auth_url":      authURL,
		prefix + "token_url":     tokenURL,
	}
	if len(scopes) > 0 {
		settings[prefix+"scopes"] = scopes
	}
	for key, value := range settings {
		if err := configStore.Set(key, value); err != nil {
			return fmt.Errorf("saving OAuth app settings: %w", err)
		}
	}

	tokenRelay.SetProviderConfig(platform, relay.ProviderConfig{
		ClientID:     clientID,
		ClientSecret: string(secretBytes),
		AuthURL:      authURL,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	})

	return nil
}

// prompt reads a trimmed line from stdin, failing on empty input.
func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	cmd.Printf("%s: ", label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}
	input = strings.TrimSpace(input)
	if input == "" && !strings.Contains(label, "optional") {
		return "", fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, label)
	}
	return input, nil
}
