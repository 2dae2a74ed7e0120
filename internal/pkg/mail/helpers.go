package mail

import (
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/config"
)

// BuildMailConfig maps the application config onto the mailer config so
// every caller builds the sender consistently.
func BuildMailConfig(cfg *config.AppConfig) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		Enable:    cfg.Mail.Enable,
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		User:      cfg.Mail.User,
		Pass:      cfg.Mail.Pass,
		From:      cfg.Mail.From,
		ReplyTo:   cfg.Mail.ReplyTo,
		UseResend: cfg.Mail.ResendKey != "",
		ResendKey: cfg.Mail.ResendKey,
	}
}
