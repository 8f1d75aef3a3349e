/*
Package cli implements the phonebook command line client.

Commands talk to a phonebook server through internal/client. Register, login and contact
creation run the same form controllers as the web client, with terminal prompts in place
of inputs: each answer is validated as it is typed, failures are reported as
notifications, and a failed submission can be retried without retyping.
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"phonebook/internal/app/form"
	"phonebook/internal/client"
)

const (
	// ServerEnv overrides the default server address.
	ServerEnv = "PHONEBOOK_SERVER"

	DefaultServer = "http://localhost:8080"
)

// App holds what the commands share. Zero fields get defaults in NewRootCommand.
type App struct {
	Out        io.Writer
	Prompter   Prompter
	HTTPClient *http.Client
	Forms      *form.Registry

	// Server and SessionPath are bound to the --server and --session flags.
	Server      string
	SessionPath string
}

func (a *App) defaults() {
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.Prompter == nil {
		a.Prompter = SurveyPrompter{}
	}
	if a.Forms == nil {
		a.Forms = form.DefaultRegistry()
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

// newClient returns a client for a.Server carrying token.
func (a *App) newClient(token string) *client.Client {
	opts := []client.Option{client.WithToken(token)}
	if a.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(a.HTTPClient))
	}
	return client.New(a.Server, opts...)
}

// signedIn loads the saved session and returns a client using its token.
func (a *App) signedIn() (*client.Client, client.Session, error) {
	s, err := client.LoadSession(a.SessionPath)
	if err != nil {
		return nil, client.Session{}, err
	}
	if !s.SignedIn() {
		return nil, client.Session{}, fmt.Errorf("not signed in, run \"phonebook login\" first")
	}
	if s.Server != "" && s.Server != a.Server {
		return nil, client.Session{}, fmt.Errorf("signed in to %s, not %s", s.Server, a.Server)
	}
	return a.newClient(s.Token), s, nil
}

// authForm runs the register or login form and saves the resulting session.
func (a *App) authForm(ctx context.Context, kind form.Kind) error {
	if s, err := client.LoadSession(a.SessionPath); err == nil && s.SignedIn() {
		return fmt.Errorf("already signed in as %s, run \"phonebook logout\" first", s.User.Email)
	}

	c := a.newClient("")
	cfg, err := form.ConfigFor(kind, a.Forms, c, nil)
	if err != nil {
		return err
	}

	st, err := runForm(ctx, a.Prompter, a.Out, cfg)
	if err != nil {
		return err
	}

	fields := st.Result.Fields
	session := client.Session{
		Server: a.Server,
		Token:  fields["token"],
		User: client.SessionUser{
			ID:    fields["id"],
			Name:  fields["name"],
			Email: fields["email"],
		},
	}
	session.SavedAt = timeNow().UTC()

	if err := client.SaveSession(a.SessionPath, session); err != nil {
		return err
	}

	a.printf("Signed in as %s <%s>\n", session.User.Name, session.User.Email)
	return nil
}
