package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/evanhrs/budgetapp/internal/auth"
	"github.com/evanhrs/budgetapp/internal/bypass"
)

// Console is a minimal interactive front-end over the auth facade. It
// is presentation-layer code: it holds the current session id itself
// and passes it explicitly into every authenticated call.
type Console struct {
	auth   *auth.Service
	bypass *bypass.Service
	log    *zap.Logger
	in     *bufio.Reader

	session string
}

func New(authSvc *auth.Service, bypassSvc *bypass.Service, log *zap.Logger) *Console {
	return &Console{
		auth:   authSvc,
		bypass: bypassSvc,
		log:    log,
		in:     bufio.NewReader(os.Stdin),
	}
}

func (c *Console) readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Run processes commands until quit or EOF.
func (c *Console) Run() {
	defer c.log.Info("console closed")

	fmt.Println("budgetapp security console. Commands: register, login, whoami, passwd, reset, unlock, logout, quit")

	for {
		line, err := c.readLine("> ")
		if err != nil {
			return
		}

		switch line {
		case "":
		case "register":
			c.register()
		case "login":
			c.login()
		case "whoami":
			c.whoami()
		case "passwd":
			c.changePassword()
		case "reset":
			c.resetPassword()
		case "unlock":
			c.unlock()
		case "logout":
			c.logout()
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command:", line)
		}
	}
}

// render maps the facade's error taxonomy to user-facing phrasing. The
// core never decides wording; that is this layer's job.
func render(err error) string {
	var locked *auth.LockedOutError
	var weak *auth.WeakPasswordError

	switch {
	case errors.As(err, &locked):
		return fmt.Sprintf("account is locked, retry in %s", locked.RetryAfter.Round(time.Second))
	case errors.As(err, &weak):
		return "password " + weak.Reason
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid username/email or password"
	case errors.Is(err, auth.ErrTokenExpired):
		return "that reset token has expired; request a new one"
	case errors.Is(err, auth.ErrTokenAlreadyUsed):
		return "that reset token was already used; request a new one"
	case errors.Is(err, auth.ErrTokenInvalid):
		return "that reset token is not valid"
	case errors.Is(err, auth.ErrSessionExpired), errors.Is(err, auth.ErrSessionInvalid):
		return "your session has ended; log in again"
	case errors.Is(err, auth.ErrStorageUnavailable):
		return "storage is unavailable, try again shortly"
	default:
		return err.Error()
	}
}

func (c *Console) register() {
	username, err := c.readLine("username: ")
	if err != nil {
		return
	}
	email, err := c.readLine("email: ")
	if err != nil {
		return
	}
	pw, err := c.readPassword("password: ")
	if err != nil {
		return
	}
	confirm, err := c.readPassword("confirm password: ")
	if err != nil {
		return
	}
	if pw != confirm {
		fmt.Println("passwords do not match")
		return
	}

	user, err := c.auth.Register(username, email, pw)
	if err != nil {
		fmt.Println(render(err))
		return
	}
	fmt.Printf("account created for %s\n", user.Username)
}

func (c *Console) login() {
	identifier, err := c.readLine("username or email: ")
	if err != nil {
		return
	}
	pw, err := c.readPassword("password: ")
	if err != nil {
		return
	}

	sess, err := c.auth.Login(identifier, pw)
	if err != nil {
		fmt.Println(render(err))
		return
	}
	c.session = sess.Token
	fmt.Println("logged in")
}

func (c *Console) whoami() {
	if c.session == "" {
		fmt.Println("not logged in")
		return
	}
	userID, err := c.auth.Refresh(c.session)
	if err != nil {
		c.session = ""
		fmt.Println(render(err))
		return
	}
	fmt.Printf("logged in as user %d\n", userID)
}

func (c *Console) changePassword() {
	if c.session == "" {
		fmt.Println("not logged in")
		return
	}
	current, err := c.readPassword("current password: ")
	if err != nil {
		return
	}
	next, err := c.readPassword("new password: ")
	if err != nil {
		return
	}

	if err := c.auth.ChangePassword(c.session, current, next); err != nil {
		fmt.Println(render(err))
		return
	}
	fmt.Println("password changed")
}

func (c *Console) resetPassword() {
	identifier, err := c.readLine("username or email: ")
	if err != nil {
		return
	}

	token, err := c.auth.RequestPasswordReset(identifier)
	if err != nil {
		fmt.Println(render(err))
		return
	}
	// The token is shown regardless of whether the account exists, so
	// this screen never confirms registration status.
	fmt.Println("reset token (valid 30 minutes):", token)

	entered, err := c.readLine("paste token to verify: ")
	if err != nil {
		return
	}
	if err := c.auth.PeekResetToken(entered); err != nil {
		fmt.Println(render(err))
		return
	}
	fmt.Println("token verified")

	pw, err := c.readPassword("new password: ")
	if err != nil {
		return
	}
	if err := c.auth.CompletePasswordReset(entered, pw); err != nil {
		fmt.Println(render(err))
		return
	}
	fmt.Println("password reset complete")
}

func (c *Console) unlock() {
	actor, err := c.readLine("administrator name: ")
	if err != nil {
		return
	}
	target, err := c.readLine("target username or email: ")
	if err != nil {
		return
	}
	proof, err := c.readPassword("admin secret: ")
	if err != nil {
		return
	}

	record, err := c.bypass.ForceUnlock(actor, target, proof)
	if err != nil {
		fmt.Println("unlock denied")
		return
	}
	fmt.Printf("account unlocked (audit %s)\n", record.ID)
}

func (c *Console) logout() {
	if c.session == "" {
		fmt.Println("not logged in")
		return
	}
	if err := c.auth.Logout(c.session); err != nil {
		fmt.Println(render(err))
		return
	}
	c.session = ""
	fmt.Println("logged out")
}
