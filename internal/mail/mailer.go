package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"promptbook/internal/journal"
)

// raw HTML in coaching text is escaped (WithUnsafe is not set)
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var reminderTmpl = template.Must(template.New("reminder").Parse(`<!doctype html>
<html><body style="font-family: Georgia, serif; max-width: 560px; margin: auto;">
<p style="color:#666">Week {{.Week}} of 52{{if .Category}} &middot; {{.Category}}{{end}}</p>
<h1>{{.Title}}</h1>
{{if .Coaching}}<div>{{.Coaching}}</div>{{end}}
{{if .Questions}}<ul>{{range .Questions}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Followups}}<p>If you get stuck:</p><ul>{{range .Followups}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p><a href="{{.Link}}">Start writing</a></p>
</body></html>`))

var linkTmpl = template.Must(template.New("link").Parse(`<!doctype html>
<html><body style="font-family: Georgia, serif; max-width: 560px; margin: auto;">
<p>{{.Intro}}</p>
<p><a href="{{.Link}}">{{.Action}}</a></p>
<p style="color:#666">This link expires in one hour. If you did not ask for it you can ignore this email.</p>
</body></html>`))

// Mailer renders and sends the application's messages.
type Mailer struct {
	Sender  Sender
	From    string
	ReplyTo string
	BaseURL string
}

// SendWeeklyReminder mails the week's prompt to one user.
func (m *Mailer) SendWeeklyReminder(ctx context.Context, to string, week int, p journal.Prompt) error {
	subject, body, err := m.RenderReminder(week, p)
	if err != nil {
		return err
	}
	return m.send(ctx, to, subject, body)
}

// RenderReminder returns the subject and HTML body of a reminder.
func (m *Mailer) RenderReminder(week int, p journal.Prompt) (string, string, error) {
	var coaching bytes.Buffer
	if strings.TrimSpace(p.Coaching) != "" {
		if err := md.Convert([]byte(p.Coaching), &coaching); err != nil {
			return "", "", fmt.Errorf("render coaching: %w", err)
		}
	}

	title := journal.WeekTitle(&p, week)
	var body bytes.Buffer
	err := reminderTmpl.Execute(&body, map[string]any{
		"Week":      week,
		"Title":     title,
		"Category":  p.Category,
		"Coaching":  template.HTML(coaching.String()),
		"Questions": []string(p.Questions),
		"Followups": []string(p.HelpfulFollowups),
		"Link":      m.link(fmt.Sprintf("/weeks/%d", week), nil),
	})
	if err != nil {
		return "", "", fmt.Errorf("render reminder: %w", err)
	}
	return fmt.Sprintf("Week %d: %s", week, title), body.String(), nil
}

// SendMagicLink mails a one-hour sign-in link.
func (m *Mailer) SendMagicLink(ctx context.Context, to, token string) error {
	return m.sendLink(ctx, to, "Your sign-in link",
		"Use the button below to sign in to your journal.", "Sign in",
		m.link("/auth/magic", url.Values{"token": {token}}))
}

// SendPasswordReset mails a one-hour password reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	return m.sendLink(ctx, to, "Reset your password",
		"Someone asked to reset the password for your journal account.", "Choose a new password",
		m.link("/auth/reset", url.Values{"token": {token}}))
}

func (m *Mailer) sendLink(ctx context.Context, to, subject, intro, action, link string) error {
	var body bytes.Buffer
	if err := linkTmpl.Execute(&body, map[string]string{
		"Intro":  intro,
		"Action": action,
		"Link":   link,
	}); err != nil {
		return fmt.Errorf("render link email: %w", err)
	}
	return m.send(ctx, to, subject, body.String())
}

func (m *Mailer) send(ctx context.Context, to, subject, html string) error {
	_, err := m.Sender.Send(ctx, SendRequest{
		To:      []string{to},
		From:    m.From,
		Subject: subject,
		HTML:    html,
		ReplyTo: m.ReplyTo,
	})
	return err
}

func (m *Mailer) link(path string, q url.Values) string {
	u := strings.TrimRight(m.BaseURL, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
