package followup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// AnonymousFTPRunner logs into a discovered FTP socket as "anonymous" and
// reports whether the server accepts it, plus the root directory listing
// when it does. Grounded on the teacher's tmp/defaultCredentials.go
// CheckForFtp, stripped down to the single anonymous/anonymous credential
// pair: a follow-up collaborator may probe for a well-known misconfiguration,
// it may not brute force.
type AnonymousFTPRunner struct {
	Timeout time.Duration
}

func NewAnonymousFTPRunner() *AnonymousFTPRunner {
	return &AnonymousFTPRunner{Timeout: 5 * time.Second}
}

func (r *AnonymousFTPRunner) Name() string { return "ftp-anonymous" }

func (r *AnonymousFTPRunner) Applies(f Finding) bool {
	return f.Service == "ftp"
}

func (r *AnonymousFTPRunner) Run(ctx context.Context, f Finding) (string, error) {
	addr := fmt.Sprintf("%s:%d", f.Host, f.Port)

	c, err := ftp.Dial(addr, ftp.DialWithTimeout(r.Timeout))
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", addr, err)
	}
	defer c.Quit()

	if err := c.Login("anonymous", "anonymous"); err != nil {
		return fmt.Sprintf("%s rejects anonymous login", addr), nil
	}

	entries, err := c.List("")
	if err != nil {
		return fmt.Sprintf("%s accepts anonymous login", addr), nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return fmt.Sprintf("%s accepts anonymous login, root: [%s]", addr, strings.Join(names, ", ")), nil
}
