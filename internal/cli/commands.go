package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"phonebook/internal/app/avatar"
	"phonebook/internal/app/form"
	"phonebook/internal/client"
	"phonebook/internal/pkg/errs"
)

// timeNow is replaced in tests.
var timeNow = time.Now

// NewRootCommand builds the phonebook command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	app.defaults()

	defaultServer := os.Getenv(ServerEnv)
	if defaultServer == "" {
		defaultServer = DefaultServer
	}
	defaultSession, err := client.DefaultSessionPath()
	if err != nil {
		defaultSession = "phonebook-session.yaml"
	}

	root := &cobra.Command{
		Use:           "phonebook",
		Short:         "Manage your phonebook from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	if app.Server == "" {
		app.Server = defaultServer
	}
	if app.SessionPath == "" {
		app.SessionPath = defaultSession
	}
	flags.StringVar(&app.Server, "server", app.Server, "phonebook server address (env "+ServerEnv+")")
	flags.StringVar(&app.SessionPath, "session", app.SessionPath, "session file (env "+client.SessionFileEnv+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "register",
			Short: "Create an account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.authForm(cmd.Context(), form.KindRegister)
			},
		},
		&cobra.Command{
			Use:   "login",
			Short: "Sign in",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.authForm(cmd.Context(), form.KindLogin)
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Sign out and forget the saved session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runLogout(cmd.Context(), app)
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the signed-in user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWhoami(cmd.Context(), app)
			},
		},
		newContactsCommand(app),
		newAvatarCommand(app),
		&cobra.Command{
			Use:   "photo <file>",
			Short: "Upload a profile photo (JPEG, PNG or WebP)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPhoto(cmd.Context(), app, args[0])
			},
		},
	)

	return root
}

func newContactsCommand(app *App) *cobra.Command {
	contacts := &cobra.Command{
		Use:   "contacts",
		Short: "List, add and delete contacts",
	}

	contacts.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List contacts sorted by name",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runContactsList(cmd.Context(), app)
			},
		},
		&cobra.Command{
			Use:   "add",
			Short: "Add a contact",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runContactsAdd(cmd.Context(), app)
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"rm"},
			Short:   "Delete a contact",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runContactsDelete(cmd.Context(), app, args[0])
			},
		},
	)

	return contacts
}

func newAvatarCommand(app *App) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "avatar <name>",
		Short: "Show the placeholder avatar of a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := avatar.Derive(args[0])
			if !offline {
				var err error
				if spec, err = app.newClient("").Avatar(cmd.Context(), args[0]); err != nil {
					return err
				}
			}

			app.printf("%s\t%s\n", spec.Initials, spec.BackgroundColor)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "derive the avatar locally instead of asking the server")

	return cmd
}

func runLogout(ctx context.Context, app *App) error {
	c, _, err := app.signedIn()
	if err == nil {
		var apiErr *errs.CustomError
		if err := c.Logout(ctx); err != nil && !(errors.As(err, &apiErr) && apiErr.Code == errs.ErrUnauthorized) {
			app.printf("Server did not confirm the sign-out: %v\n", err)
		}
	}

	if err := client.ClearSession(app.SessionPath); err != nil {
		return err
	}

	app.printf("Signed out\n")
	return nil
}

func runWhoami(ctx context.Context, app *App) error {
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}

	u, err := c.Current(ctx)
	if err != nil {
		return err
	}

	app.printf("%s <%s>\n", u.Name, u.Email)
	app.printf("avatar: %s %s\n", u.Avatar.Initials, u.Avatar.BackgroundColor)
	if u.AvatarURL != "" {
		app.printf("photo:  %s\n", u.AvatarURL)
	}
	return nil
}

func runContactsList(ctx context.Context, app *App) error {
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}

	items, err := c.ListContacts(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		app.printf("No contacts yet. Add one with \"phonebook contacts add\".\n")
		return nil
	}

	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAVATAR\tNAME\tNUMBER")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.ID, item.Avatar.Initials, item.Name, item.Number)
	}
	return tw.Flush()
}

func runContactsAdd(ctx context.Context, app *App) error {
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}

	cfg, err := form.ContactConfig(app.Forms, c)
	if err != nil {
		return err
	}

	st, err := runForm(ctx, app.Prompter, app.Out, cfg)
	if err != nil {
		return err
	}

	app.printf("Added %s (%s)\n", st.Result.Fields["name"], st.Result.Fields["id"])
	return nil
}

func runContactsDelete(ctx context.Context, app *App, id string) error {
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}

	if err := c.DeleteContact(ctx, id); err != nil {
		return err
	}

	app.printf("Deleted %s\n", id)
	return nil
}

func runPhoto(ctx context.Context, app *App, path string) error {
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	u, err := c.UploadAvatar(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}

	app.printf("Profile photo updated: %s\n", u.AvatarURL)
	return nil
}
