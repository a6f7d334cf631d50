package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/fatflowers/subscription/internal/models"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/types"
)

// Sender delivers one notification over a single channel.
type Sender interface {
	Send(ctx context.Context, n *models.Notification) error
}

// SenderRegistry resolves the sender for a channel.
type SenderRegistry map[types.NotificationChannel]Sender

func NewSenderRegistry(cfg *cfgpkg.Config, log *zap.SugaredLogger) SenderRegistry {
	return SenderRegistry{
		types.NotificationChannelEmail: NewSMTPSender(cfg),
		types.NotificationChannelSMS:   &noopSender{log: log, channel: types.NotificationChannelSMS},
		types.NotificationChannelPush:  &noopSender{log: log, channel: types.NotificationChannelPush},
	}
}

func (r SenderRegistry) For(channel types.NotificationChannel) (Sender, error) {
	s, ok := r[channel]
	if !ok {
		return nil, fmt.Errorf("no sender for channel %s", channel)
	}
	return s, nil
}

// SMTPSender delivers email through the configured relay.
type SMTPSender struct {
	cfg *cfgpkg.Config
}

func NewSMTPSender(cfg *cfgpkg.Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, n *models.Notification) error {
	smtpCfg := s.cfg.Notification.SMTP
	addr := fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port)

	var auth smtp.Auth
	if smtpCfg.User != "" {
		auth = smtp.PlainAuth("", smtpCfg.User, smtpCfg.Pass, smtpCfg.Host)
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.Notification.From, n.Recipient, n.Subject, n.Content)

	if err := smtp.SendMail(addr, auth, s.cfg.Notification.From, []string{n.Recipient}, []byte(body)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", n.Recipient, err)
	}
	return nil
}

// noopSender stands in for channels without a transport yet.
type noopSender struct {
	log     *zap.SugaredLogger
	channel types.NotificationChannel
}

func (s *noopSender) Send(ctx context.Context, n *models.Notification) error {
	s.log.Infow("channel not implemented, skipping delivery",
		"channel", s.channel, "recipient", n.Recipient)
	return nil
}
