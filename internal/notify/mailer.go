package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"text/template"
	"time"

	"bus-tracker/internal/data/entity"
	"bus-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserFinder resolves the recipient of a confirmation.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// defaultSendTimeout bounds a delivery whose context carries no deadline.
const defaultSendTimeout = 30 * time.Second

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`Dear {{.Name}},

Your seat booking has been confirmed!

Trip: {{.Event.TripName}}
Date: {{.Event.TripDate}}
Seat Number: {{.Event.SeatNumber}}
Booking Time: {{.BookedAt}}
Reference: {{.Event.Ref}}

Thank you for choosing our bus service.

Best regards,
Bus Tracker Team
`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`Hi {{.Name}},

Welcome to Bus Tracker! Your account {{.Username}} is ready.
You can now follow the bus live and book a seat on upcoming trips.

Bus Tracker Team
`))

// Mailer sends plain-text mail over SMTP.
type Mailer struct {
	config utils.EmailConfig
	users  UserFinder
	send   sendFunc
	log    *zap.Logger
}

func NewMailer(config utils.EmailConfig, users UserFinder, log *zap.Logger) *Mailer {
	return &Mailer{
		config: config,
		users:  users,
		send:   sendMail,
		log:    log.With(zap.String("sink", "smtp")),
	}
}

func (m *Mailer) Notify(ctx context.Context, event BookingConfirmed) error {
	user, err := m.users.FindByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", event.UserID.String(), err)
	}
	if user == nil || user.Email == "" {
		m.log.Warn("No recipient for booking confirmation",
			zap.String("user_id", event.UserID.String()),
			zap.String("booking_id", event.BookingID.String()),
		)
		return nil
	}

	var body bytes.Buffer
	err = confirmationTmpl.Execute(&body, map[string]any{
		"Name":     user.DisplayName(),
		"Event":    event,
		"BookedAt": event.BookedAt.Format(time.DateTime),
	})
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	subject := "Seat Booking Confirmation - " + event.TripName
	if err := m.deliver(ctx, user.Email, subject, body.String()); err != nil {
		return err
	}

	m.log.Info("Booking confirmation mailed",
		zap.String("booking_id", event.BookingID.String()),
		zap.String("to", user.Email),
	)
	return nil
}

// SendWelcome greets a freshly registered user.
func (m *Mailer) SendWelcome(ctx context.Context, user *entity.User) error {
	var body bytes.Buffer
	err := welcomeTmpl.Execute(&body, map[string]any{
		"Name":     user.DisplayName(),
		"Username": user.Username,
	})
	if err != nil {
		return fmt.Errorf("render welcome: %w", err)
	}
	return m.deliver(ctx, user.Email, "Welcome to Bus Tracker!", body.String())
}

func (m *Mailer) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultSendTimeout)
		defer cancel()
	}

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))

	var auth smtp.Auth
	if m.config.User != "" {
		auth = smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
	}

	if err := m.send(ctx, addr, auth, m.config.From, []string{to}, buildMessage(m.config.From, to, subject, body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// sendMail is smtp.SendMail bound to ctx: the dial honours cancellation and
// every read and write on the connection stops at the context deadline.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) (err error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("smtp address %q: %w", addr, err)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("set deadline: %w", err)
		}
	}
	// cancellation without a deadline still unblocks pending I/O
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	defer func() {
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
	}()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if a != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(a); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}
