package notify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"bus-tracker/internal/data/entity"
	"bus-tracker/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUsers map[uuid.UUID]*entity.User

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s[id], nil
}

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestMailer(users UserFinder, sent *[]sentMail, sendErr error) *Mailer {
	m := NewMailer(utils.EmailConfig{Host: "smtp.local", Port: 2525, From: "noreply@bus.local"}, users, zap.NewNop())
	m.send = func(_ context.Context, addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		*sent = append(*sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return sendErr
	}
	return m
}

func TestMailerNotify(t *testing.T) {
	user := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "rahim", Email: "rahim@uni.edu", FirstName: "Rahim"}
	event := testEvent("5C")
	event.UserID = user.ID
	event.Ref = "SEAT-20260501-abcd1234"
	event.BookedAt = time.Date(2026, 5, 1, 6, 30, 0, 0, time.UTC)

	var sent []sentMail
	m := newTestMailer(stubUsers{user.ID: user}, &sent, nil)

	require.NoError(t, m.Notify(context.Background(), event))
	require.Len(t, sent, 1)
	assert.Equal(t, "smtp.local:2525", sent[0].addr)
	assert.Equal(t, []string{"rahim@uni.edu"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: Seat Booking Confirmation - Ronobheri\r\n")
	assert.Contains(t, sent[0].msg, "Dear Rahim,")
	assert.Contains(t, sent[0].msg, "Seat Number: 5C")
	assert.Contains(t, sent[0].msg, "Booking Time: 2026-05-01 06:30:00")
	assert.Contains(t, sent[0].msg, "Reference: SEAT-20260501-abcd1234")
}

func TestMailerNotifyUnknownRecipient(t *testing.T) {
	var sent []sentMail
	m := newTestMailer(stubUsers{}, &sent, nil)

	assert.NoError(t, m.Notify(context.Background(), testEvent("5C")))
	assert.Empty(t, sent)
}

func TestMailerNotifySendFailure(t *testing.T) {
	user := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "karim", Email: "karim@uni.edu"}
	event := testEvent("1A")
	event.UserID = user.ID

	var sent []sentMail
	m := newTestMailer(stubUsers{user.ID: user}, &sent, errors.New("connection refused"))

	err := m.Notify(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "karim@uni.edu")
}

func TestMailerSendWelcome(t *testing.T) {
	var sent []sentMail
	m := newTestMailer(stubUsers{}, &sent, nil)

	user := &entity.User{Username: "karim", Email: "karim@uni.edu"}
	require.NoError(t, m.SendWelcome(context.Background(), user))
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].msg, "Subject: Welcome to Bus Tracker!")
	assert.Contains(t, sent[0].msg, "Hi karim,")
}

// listenSMTP starts a TCP listener on loopback and hands each accepted
// connection to serve.
func listenSMTP(t *testing.T, serve func(net.Conn)) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serve(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestMailerGivesUpOnSilentServer(t *testing.T) {
	held := make(chan net.Conn, 1)
	host, port := listenSMTP(t, func(conn net.Conn) {
		// accept and never greet
		held <- conn
	})
	t.Cleanup(func() {
		select {
		case conn := <-held:
			conn.Close()
		default:
		}
	})

	user := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "rahim", Email: "rahim@uni.edu"}
	event := testEvent("5C")
	event.UserID = user.ID
	m := NewMailer(utils.EmailConfig{Host: host, Port: port, From: "noreply@bus.local"}, stubUsers{user.ID: user}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.Notify(ctx, event)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestMailerGivesUpWhenCancelled(t *testing.T) {
	held := make(chan net.Conn, 1)
	host, port := listenSMTP(t, func(conn net.Conn) { held <- conn })
	t.Cleanup(func() {
		select {
		case conn := <-held:
			conn.Close()
		default:
		}
	})

	m := NewMailer(utils.EmailConfig{Host: host, Port: port, From: "noreply@bus.local"}, stubUsers{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	err := m.SendWelcome(ctx, &entity.User{Username: "karim", Email: "karim@uni.edu"})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestMailerSpeaksSMTP(t *testing.T) {
	received := make(chan string, 1)
	host, port := listenSMTP(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		reply := func(line string) { fmt.Fprintf(conn, "%s\r\n", line) }

		reply("220 bus.local ESMTP")
		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					received <- data.String()
					reply("250 queued")
					continue
				}
				data.WriteString(line)
				continue
			}
			switch cmd := strings.ToUpper(strings.TrimSpace(line)); {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 bus.local")
			case strings.HasPrefix(cmd, "MAIL FROM"), strings.HasPrefix(cmd, "RCPT TO"):
				reply("250 ok")
			case cmd == "DATA":
				inData = true
				reply("354 go ahead")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("502 unsupported")
			}
		}
	})

	m := NewMailer(utils.EmailConfig{Host: host, Port: port, From: "noreply@bus.local"}, stubUsers{}, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, m.SendWelcome(ctx, &entity.User{Username: "karim", Email: "karim@uni.edu"}))

	select {
	case msg := <-received:
		assert.Contains(t, msg, "Subject: Welcome to Bus Tracker!")
		assert.Contains(t, msg, "To: karim@uni.edu")
	case <-time.After(time.Second):
		t.Fatal("server never received the message")
	}
}
