package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/deskhive/go-sdk/authapi"
	"github.com/deskhive/go-sdk/helpdesk"
	"github.com/deskhive/go-sdk/internal/config"
	sdkerrors "github.com/deskhive/go-sdk/internal/errors"
	"github.com/deskhive/go-sdk/session"
	"github.com/deskhive/go-sdk/session/storage"
	"github.com/deskhive/go-sdk/token"
	"github.com/deskhive/go-sdk/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// sdk holds everything a command needs after wiring.
type sdk struct {
	session  *session.Session
	services *helpdesk.Services
	logger   zerolog.Logger
}

func newSDK(ctx context.Context) *sdk {
	c := config.New()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	codecKeys := token.DefaultClaimKeys()
	codecKeys.MustChangePassword = c.GetMustChangePasswordClaimKeys()
	codec := token.NewCodec(
		token.WithClaimKeys(codecKeys),
		token.WithRefreshWindow(c.GetRefreshWindow()),
	)

	storeOptions := []storage.Option{}
	if c.GetEphemeralTier() == "cookie" {
		storeOptions = append(storeOptions, storage.WithCookieTier(c.GetBaseURL()))
	}
	store := storage.NewTiered(c.GetStateDir(), storeOptions...)

	apiOptions := []authapi.Option{}
	if c.GetUseLegacyEndpoints() {
		apiOptions = append(apiOptions, authapi.WithLegacyEndpoints())
	}
	api := authapi.New(c.GetBaseURL(), c.GetRequestTimeout(), apiOptions...)

	sess := session.New(api, codec, store, session.WithLogger(logger))
	sess.Initialize(ctx)

	rest := transport.NewClient(c.GetBaseURL(), c.GetRequestTimeout(), sess,
		transport.WithLogger(logger))

	return &sdk{
		session:  sess,
		services: helpdesk.New(rest),
		logger:   logger,
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deskctl",
		Short:         "DeskHive helpdesk command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLoginCmd(), newLogoutCmd(), newWhoamiCmd(), newTicketsCmd())
	return root
}

func newLoginCmd() *cobra.Command {
	var email, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(config.New().GetAppName())
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				raw, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return err
				}
				password = string(raw)
			}

			s := newSDK(cmd.Context())
			if _, ok := s.session.Login(cmd.Context(), email, password, remember); !ok {
				return fmt.Errorf("login failed: %s", s.session.LastError())
			}
			user := s.session.User()
			fmt.Printf("Logged in as %s (%s)\n", user.Email, user.Role)
			if user.MustChangePassword {
				fmt.Println("Your password must be changed before you can continue.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "persist credentials across restarts")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session and wipe stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSDK(cmd.Context())
			s.session.Logout(cmd.Context())
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user from the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSDK(cmd.Context())
			if !s.session.IsAuthenticated() {
				return sdkerrors.ErrNotAuthenticated
			}
			if !s.session.Verify(cmd.Context()) {
				return fmt.Errorf("session is no longer valid, run deskctl login")
			}
			user := s.session.User()
			fmt.Printf("User:    %s\n", user.Email)
			fmt.Printf("ID:      %s\n", user.UserID)
			fmt.Printf("Role:    %s\n", user.Role)
			fmt.Printf("Expires: %s\n", s.session.AccessExpiry().Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
}

func newTicketsCmd() *cobra.Command {
	tickets := &cobra.Command{
		Use:   "tickets",
		Short: "Work with helpdesk tickets",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSDK(cmd.Context())
			if !s.session.IsAuthenticated() {
				return sdkerrors.ErrNotAuthenticated
			}
			items, err := s.services.Tickets.List(cmd.Context(), status)
			if err != nil {
				return err
			}
			for _, t := range items {
				fmt.Printf("%-10s %-12s %-8s %s\n", t.Code, t.Status, t.Priority, t.Title)
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status")

	tickets.AddCommand(list)
	return tickets
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
