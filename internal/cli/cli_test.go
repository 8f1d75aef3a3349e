package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"phonebook/internal/app/account"
	"phonebook/internal/app/contact"
	"phonebook/internal/app/db"
	"phonebook/internal/app/form"
	"phonebook/internal/app/live"
	"phonebook/internal/client"
	"phonebook/internal/configs"
	"phonebook/internal/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// scriptedPrompter answers prompts from per-label queues. Like survey, it repeats a
// question while the validator rejects the answer; an exhausted queue falls back to
// the prompt's default.
type scriptedPrompter struct {
	answers  map[string][]string
	confirms []bool
	rejected []string
}

func (p *scriptedPrompter) Input(_ context.Context, cfg InputConfig) (string, error) {
	for {
		queue := p.answers[cfg.Message]
		var ans string
		switch {
		case len(queue) > 0:
			ans, p.answers[cfg.Message] = queue[0], queue[1:]
			if ans == "" {
				ans = cfg.Default
			}
		case cfg.Default != "":
			ans = cfg.Default
		default:
			return "", fmt.Errorf("no answer scripted for %q", cfg.Message)
		}

		if cfg.Validator != nil {
			if err := cfg.Validator(ans); err != nil {
				p.rejected = append(p.rejected, err.Error())
				if len(p.answers[cfg.Message]) == 0 {
					return "", fmt.Errorf("%q rejected with nothing left to try: %w", cfg.Message, err)
				}
				continue
			}
		}
		return ans, nil
	}
}

func (p *scriptedPrompter) Password(ctx context.Context, cfg InputConfig) (string, error) {
	cfg.Default = ""
	return p.Input(ctx, cfg)
}

func (p *scriptedPrompter) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	if len(p.confirms) == 0 {
		return false, fmt.Errorf("no confirmation scripted for %q", message)
	}
	ans := p.confirms[0]
	p.confirms = p.confirms[1:]
	return ans, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := form.DefaultRegistry()
	registerSchema, err := reg.Schema(form.KindRegister)
	require.NoError(t, err)
	contactSchema, err := reg.Schema(form.KindContact)
	require.NoError(t, err)

	store := db.NewMemoryStore()
	deps := &handler.AppDeps{
		Config: &configs.AppConfig{Environment: configs.EnvDevelopment, JWTSecret: "cli-test-secret"},
		Accounts: account.NewService(account.Config{
			Store:      store,
			JWTSecret:  "cli-test-secret",
			Validator:  registerSchema,
			BcryptCost: bcrypt.MinCost,
		}),
		Contacts: contact.NewService(store, contactSchema),
		Forms:    reg,
		Live:     live.NewManager(context.Background(), time.Second),
	}

	srv := httptest.NewServer(handler.Router(deps))
	t.Cleanup(func() {
		deps.Live.Shutdown()
		srv.Close()
	})
	return srv
}

type harness struct {
	srv     *httptest.Server
	session string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		srv:     newServer(t),
		session: filepath.Join(t.TempDir(), "session.yaml"),
	}
}

func (h *harness) run(t *testing.T, p Prompter, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := &App{
		Out:         &out,
		Prompter:    p,
		HTTPClient:  h.srv.Client(),
		Server:      h.srv.URL,
		SessionPath: h.session,
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) register(t *testing.T) {
	t.Helper()

	_, err := h.run(t, &scriptedPrompter{answers: map[string][]string{
		"Full name":        {"Jane Doe"},
		"Email":            {"jane@example.com"},
		"Password":         {"secret123"},
		"Confirm password": {"secret123"},
	}}, "register")
	require.NoError(t, err)
}

func TestRegister_ValidatesAsYouType(t *testing.T) {
	h := newHarness(t)

	p := &scriptedPrompter{answers: map[string][]string{
		"Full name":        {"J", "Jane Doe"},
		"Email":            {"jane@", "jane@example.com"},
		"Password":         {"secret", "secret123"},
		"Confirm password": {"secret124", "secret123"},
	}}

	out, err := h.run(t, p, "register")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Name must be at least 2 characters",
		"Enter a valid email",
		"Password should be of minimum 7 characters length",
		"Passwords must match",
	}, p.rejected)
	assert.Contains(t, out, "✔ Your account has been created")
	assert.Contains(t, out, "Signed in as Jane Doe <jane@example.com>")

	s, err := client.LoadSession(h.session)
	require.NoError(t, err)
	assert.True(t, s.SignedIn())
	assert.Equal(t, h.srv.URL, s.Server)
	assert.Equal(t, "jane@example.com", s.User.Email)

	out, err = h.run(t, nil, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe <jane@example.com>")
	assert.Contains(t, out, "avatar: JD #")

	_, err = h.run(t, &scriptedPrompter{}, "login")
	assert.ErrorContains(t, err, "already signed in")
}

func TestLogin_RetryKeepsValues(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	_, err := h.run(t, nil, "logout")
	require.NoError(t, err)

	p := &scriptedPrompter{
		answers: map[string][]string{
			"Email":    {"jane@example.com"},
			"Password": {"wrong-password", "secret123"},
		},
		confirms: []bool{true},
	}

	out, err := h.run(t, p, "login")
	require.NoError(t, err)

	assert.Contains(t, out, "✘ "+form.DefaultFailureMessage)
	assert.Contains(t, out, "✔ Welcome back")
	assert.Empty(t, p.answers["Email"], "the email was reused from the first attempt")
}

func TestLogin_DeclinedRetry(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	_, err := h.run(t, nil, "logout")
	require.NoError(t, err)

	_, err = h.run(t, &scriptedPrompter{
		answers:  map[string][]string{"Email": {"jane@example.com"}, "Password": {"wrong-password"}},
		confirms: []bool{false},
	}, "login")
	assert.ErrorIs(t, err, ErrNotSubmitted)

	s, err := client.LoadSession(h.session)
	require.NoError(t, err)
	assert.False(t, s.SignedIn())
}

func TestContacts(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, nil, "contacts", "list")
	assert.ErrorContains(t, err, "not signed in")

	h.register(t)

	out, err := h.run(t, nil, "contacts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No contacts yet")

	out, err = h.run(t, &scriptedPrompter{answers: map[string][]string{
		"Full name":    {"Rosie Simpson"},
		"Phone number": {"call me", "459-12-56"},
	}}, "contacts", "add")
	require.NoError(t, err)
	assert.Contains(t, out, "✔ Contact has been added")
	assert.Contains(t, out, "Added Rosie Simpson")

	out, err = h.run(t, nil, "contacts", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "RS")
	assert.Contains(t, out, "459-12-56")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	id := strings.Fields(lines[1])[0]

	out, err = h.run(t, nil, "contacts", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id)

	_, err = h.run(t, nil, "contacts", "delete", id)
	assert.ErrorContains(t, err, "Contact not found")
}

func TestAvatar(t *testing.T) {
	h := newHarness(t)

	online, err := h.run(t, nil, "avatar", "Rosie Simpson")
	require.NoError(t, err)
	offline, err := h.run(t, nil, "avatar", "--offline", "Rosie Simpson")
	require.NoError(t, err)

	assert.Equal(t, online, offline)
	assert.True(t, strings.HasPrefix(online, "RS\t#"))
}

func TestLogout_WithoutSession(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, nil, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
}
