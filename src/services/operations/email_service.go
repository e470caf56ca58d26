package operations

import (
	"context"
	"fmt"
	"html"

	"github.com/drive-clone/api/src/config"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// emailSender is the part of the Resend client the service uses
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailService sends transactional mail through Resend
type EmailService struct {
	sender      emailSender
	from        string
	frontendURL string
	logger      *logrus.Logger
}

// NewEmailService creates the email service. Without RESEND_API_KEY it only
// logs what it would have sent.
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	s := &EmailService{
		from:        cfg.EmailFrom,
		frontendURL: cfg.FrontendURL,
		logger:      logger,
	}
	if cfg.ResendAPIKey != "" {
		s.sender = resend.NewClient(cfg.ResendAPIKey).Emails
	} else {
		logger.Warn("RESEND_API_KEY not set, emails will be logged only")
	}
	return s
}

// Enabled reports whether mail is actually delivered
func (s *EmailService) Enabled() bool {
	return s.sender != nil
}

// SendWelcomeEmail greets a newly registered user
func (s *EmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	if name == "" {
		name = to
	}
	body := fmt.Sprintf(`<h1>Welcome to Drive Clone, %s!</h1>
<p>Your account is ready. Upload your first files at <a href="%s">%s</a>.</p>
<p>Every account includes 500MB of storage.</p>`,
		html.EscapeString(name), html.EscapeString(s.frontendURL), html.EscapeString(s.frontendURL))

	return s.send(ctx, to, "Welcome to Drive Clone", body)
}

func (s *EmailService) send(ctx context.Context, to, subject, body string) error {
	log := s.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	})

	if s.sender == nil {
		log.Info("Email delivery disabled, skipping send")
		return nil
	}

	sent, err := s.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		log.WithError(err).Error("Failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	log.WithField("email_id", sent.Id).Info("Email sent")
	return nil
}
