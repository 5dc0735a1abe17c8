package mailer

import (
	"fmt"
	"html"
	"strings"

	"ship-framework-be/pkg/ideation"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendProjectSummary(toEmail string, project ideation.ArchivedProject) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) SendProjectSummary(toEmail string, project ideation.ArchivedProject) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Resumen del proyecto: %s", project.Name))
	m.SetBody("text/html", SummaryHTML(project))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send summary of %s to %s: %w", project.ID, toEmail, err)
	}
	return nil
}

// SummaryHTML renders the four stages of a project as a plain email body.
func SummaryHTML(project ideation.ArchivedProject) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">`)
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(project.Name))

	profile := project.Document.ClientProfile
	fmt.Fprintf(&b, "<p><strong>Cliente:</strong> %s", html.EscapeString(profile.Name))
	if profile.Company != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(profile.Company))
	}
	b.WriteString("</p>")

	for _, step := range project.Document.Steps {
		fmt.Fprintf(&b, "<h3>%s</h3>", html.EscapeString(step.Title))
		fmt.Fprintf(&b, "<p>%s</p>", paragraphs(step.DraftInput))
		if strings.TrimSpace(step.CurrentResponse) != "" {
			b.WriteString(`<blockquote style="border-left: 3px solid #4CAF50; padding-left: 10px;">`)
			b.WriteString(paragraphs(step.CurrentResponse))
			b.WriteString("</blockquote>")
		}
	}
	b.WriteString("</div>")
	return b.String()
}

func paragraphs(text string) string {
	return strings.ReplaceAll(html.EscapeString(strings.TrimSpace(text)), "\n", "<br>")
}
