package login

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/keyring"
)

// LoginOptions holds options for the auth login command.
type LoginOptions struct {
	IOStreams  *iostreams.IOStreams
	StoreToken func(registryURL, token string) error

	Registry string
}

// NewCmdLogin creates the auth login command.
func NewCmdLogin(f *cmdutil.Factory, runF func(context.Context, *LoginOptions) error) *cobra.Command {
	opts := &LoginOptions{
		IOStreams:  f.IOStreams,
		StoreToken: keyring.SetToken,
	}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a registry token in the OS keychain",
		Long: `Reads a token from standard input and stores it in the OS keychain for the
host of --registry. On a terminal the token is read without echo.`,
		Example: `  # Store a token piped from a secret manager
  vault read -field=token secret/nuget | nugetsync auth login --registry https://pkgs.example.com/v3/index.json

  # Paste a token interactively
  nugetsync auth login --registry https://pkgs.example.com/v3/index.json`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlag("registry", opts.Registry); err != nil {
				return err
			}
			if _, err := keyring.TokenUser(opts.Registry); err != nil {
				return cmdutil.FlagErrorWrap(err)
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return loginRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Registry, "registry", "", "Service index URL of the registry")

	return cmd
}

func loginRun(_ context.Context, opts *LoginOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	token, err := readToken(ios)
	if err != nil {
		return err
	}
	if token == "" {
		return cmdutil.FlagErrorf("no token provided on standard input")
	}

	if err := opts.StoreToken(opts.Registry, token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	host, _ := keyring.TokenUser(opts.Registry)
	ios.Logger.Debug().Str("host", host).Msg("stored registry token")
	fmt.Fprintf(ios.ErrOut, "%s Stored token for %s\n", cs.SuccessIcon(), host)
	return nil
}

// readToken reads a hidden line from a terminal, or all of a piped stdin.
func readToken(ios *iostreams.IOStreams) (string, error) {
	if f, ok := ios.In.(*os.File); ok && ios.IsInputTTY() {
		fmt.Fprint(ios.ErrOut, "Paste your token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(ios.ErrOut)
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	b, err := io.ReadAll(bufio.NewReader(ios.In))
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
