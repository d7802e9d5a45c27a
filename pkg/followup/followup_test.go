package followup

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type stubRunner struct {
	name    string
	applies bool
	calls   int
}

func (s *stubRunner) Name() string             { return s.name }
func (s *stubRunner) Applies(f Finding) bool   { return s.applies }
func (s *stubRunner) Run(ctx context.Context, f Finding) (string, error) {
	s.calls++
	return "ok", nil
}

func TestDispatchSkipsNonApplicableRunners(t *testing.T) {
	a := &stubRunner{name: "a", applies: true}
	b := &stubRunner{name: "b", applies: false}

	d := &Dispatcher{Runners: []Runner{a, b}, Log: logrus.New()}
	d.Dispatch(context.Background(), Finding{Host: "127.0.0.1", Port: 80})

	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestServiceHint(t *testing.T) {
	assert.Equal(t, "ftp", ServiceHint(21))
	assert.Equal(t, "http", ServiceHint(8080))
	assert.Equal(t, "https", ServiceHint(443))
	assert.Equal(t, "", ServiceHint(12345))
}
