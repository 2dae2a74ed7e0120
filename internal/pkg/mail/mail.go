package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/smtp"
	"strings"
	"time"
)

// Config holds mail provider settings.
type Config struct {
	Enable    bool   `json:"enable"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	User      string `json:"user"`
	Pass      string `json:"pass"`
	From      string `json:"from"`
	ReplyTo   string `json:"reply_to"`
	UseResend bool   `json:"use_resend"`
	ResendKey string `json:"resend_key"`
}

// Message is a single email to send.
type Message struct {
	To       []string
	FromName string // optional display name overriding the configured From
	Subject  string
	HTML     string
	Text     string
}

// Sender sends emails via SMTP or Resend.
type Sender struct {
	cfg Config
}

func New(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) fromHeader(msg Message) string {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}
	if msg.FromName != "" {
		return fmt.Sprintf("%s <%s>", msg.FromName, from)
	}
	return from
}

// Send dispatches an email. Uses Resend if configured, otherwise SMTP.
func (s *Sender) Send(msg Message) error {
	if !s.cfg.Enable {
		return nil
	}
	if s.cfg.UseResend && s.cfg.ResendKey != "" {
		return s.sendResend(msg)
	}
	return s.sendSMTP(msg)
}

// sendSMTP sends via net/smtp.
func (s *Sender) sendSMTP(msg Message) error {
	host := s.cfg.Host
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	envelopeFrom := s.cfg.From
	if envelopeFrom == "" {
		envelopeFrom = s.cfg.User
	}

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", s.fromHeader(msg)))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	if s.cfg.ReplyTo != "" {
		body.WriteString(fmt.Sprintf("Reply-To: %s\r\n", s.cfg.ReplyTo))
	}
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, host)
	return smtp.SendMail(addr, auth, envelopeFrom, msg.To, body.Bytes())
}

// sendResend sends via the Resend HTTP API.
func (s *Sender) sendResend(msg Message) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"from":    s.fromHeader(msg),
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	})

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("resend error %d: %s", resp.StatusCode, errResp.Message)
	}
	return nil
}

const campaignTpl = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
</head>
<body style="background-color:#f5f5f5;margin:0 auto;font-family:ui-sans-serif,system-ui,-apple-system,BlinkMacSystemFont,Segoe UI,Roboto,Helvetica Neue,Arial,Noto Sans,sans-serif;padding:.5rem">
  <table align="center" width="100%" role="presentation" cellspacing="0" cellpadding="0" border="0" style="max-width:100%;border-radius:.375rem;box-shadow:0 4px 6px -1px rgb(0 0 0 / .1),0 2px 4px -2px rgb(0 0 0 / .1);margin:40px auto;padding:24px;width:600px;background-color:#fff;overflow:hidden">
    <tbody>
      <tr><td>
        {{if .TestBanner}}
        <p style="font-size:12px;line-height:20px;margin:0 0 16px;padding:6px 12px;background-color:#fef3c7;border-radius:.25rem;color:#92400e">This is a test send. Recipients will not see this banner.</p>
        {{end}}
        {{.Body}}
        {{if .LandingURL}}
        <table align="center" width="100%" role="presentation" border="0" cellpadding="0" cellspacing="0" style="text-align:center;margin:32px 0 16px">
          <tbody><tr><td>
            <a href="{{.LandingURL}}" target="_blank" style="line-height:100%;text-decoration:none;display:inline-block;max-width:100%;padding:12px 20px;background-color:#3b82f6;border-radius:.25rem;color:#fff;font-size:12px;font-weight:600;text-align:center">View Page</a>
          </td></tr></tbody>
        </table>
        {{end}}
        <hr style="width:100%;border:none;border-top:1px solid #eaeaea;margin:26px 0 12px" />
        <p style="font-size:10px;line-height:20px;margin:8px 0;text-align:center;color:rgb(156,163,175)">
          You are receiving this email because you subscribed to {{.SenderName}}.
          {{if .UnsubscribeURL}}<br /><a href="{{.UnsubscribeURL}}" target="_blank" style="color:rgb(156,163,175)">Unsubscribe</a>{{end}}
          <br />&copy;{{year}} {{.SenderName}}
        </p>
        {{if .PixelURL}}<img src="{{.PixelURL}}" width="1" height="1" alt="" style="display:block" />{{end}}
      </td></tr>
    </tbody>
  </table>
</body>
</html>`

const unsubscribedTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">You have been unsubscribed</h2>
  <p>{{.Email}} will no longer receive emails from {{.SenderName}}.</p>
  <p style="color:#999;font-size:12px">Unsubscribed by mistake? <a href="{{.ResubscribeURL}}">Resubscribe here</a>.</p>
</div>
</body>
</html>`

// CampaignData is the data for campaign emails. Body is already-sanitized
// HTML produced by the markdown renderer.
type CampaignData struct {
	Body           template.HTML
	SenderName     string
	LandingURL     string
	UnsubscribeURL string
	PixelURL       string
	TestBanner     bool
}

// UnsubscribedData is the data for unsubscribe confirmation emails.
type UnsubscribedData struct {
	Email          string
	SenderName     string
	ResubscribeURL string
}

func renderTemplate(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
	}).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderCampaign produces the final campaign email HTML for one recipient.
// Exposed separately so the worker can render once per subscriber with
// per-recipient tracking and unsubscribe URLs.
func RenderCampaign(data CampaignData) (string, error) {
	if strings.TrimSpace(data.SenderName) == "" {
		data.SenderName = "our newsletter"
	}
	return renderTemplate(campaignTpl, data)
}

// SendCampaign renders and sends a campaign email to one recipient.
func (s *Sender) SendCampaign(to, fromName, subject string, data CampaignData) error {
	html, err := RenderCampaign(data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:       []string{to},
		FromName: fromName,
		Subject:  subject,
		HTML:     html,
	})
}

// SendUnsubscribed sends an unsubscribe confirmation.
func (s *Sender) SendUnsubscribed(to string, data UnsubscribedData) error {
	if strings.TrimSpace(data.SenderName) == "" {
		data.SenderName = "our newsletter"
	}
	html, err := renderTemplate(unsubscribedTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: "You have been unsubscribed",
		HTML:    html,
	})
}
