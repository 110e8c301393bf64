package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"eventreg/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailSender_RequiresHostFromTo(t *testing.T) {
	assert.Nil(t, NewEmailSender("", 587, "a@b.c", "d@e.f", "", "", "Party"))
	assert.Nil(t, NewEmailSender("smtp.local", 587, "", "d@e.f", "", "", "Party"))
	assert.Nil(t, NewEmailSender("smtp.local", 587, "a@b.c", " , ", "", "", "Party"))

	es := NewEmailSender("smtp.local", 587, "a@b.c", "x@y.z, q@r.s", "", "", "Party")
	require.NotNil(t, es)
	assert.Equal(t, []string{"x@y.z", "q@r.s"}, es.To)
}

func TestEmailSend_BuildsMessage(t *testing.T) {
	es := NewEmailSender("smtp.local", 2525, "events@example.com", "org@example.com", "user", "pw", "Party")

	var gotAddr string
	var gotAuth smtp.Auth
	var gotMsg []byte
	es.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotMsg = addr, a, msg
		return nil
	}

	err := es.Send(context.Background(), models.Registration{
		Name: "O&#x27;Brien", Phone: "5551234", Comment: "Bringing &amp; sharing",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.NotNil(t, gotAuth)
	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: New registration: Party\r\n")
	assert.Contains(t, msg, "O'Brien registered for Party.")
	assert.Contains(t, msg, "Phone: 5551234")
	assert.Contains(t, msg, "Comment: Bringing & sharing")
}

func TestEmailSend_WrapsError(t *testing.T) {
	es := NewEmailSender("smtp.local", 25, "a@b.c", "d@e.f", "", "", "Party")
	es.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := es.Send(context.Background(), models.Registration{Name: "Ada"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestEmailSend_NilIsNoop(t *testing.T) {
	var es *EmailSender
	assert.NoError(t, es.Send(context.Background(), models.Registration{}))
}
