// Package payload builds the rendered content for each notification channel.
package payload

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"escalation-engine/internal/database"
)

// Message is the renderable source for one escalation dispatch.
type Message struct {
	Alert   *database.Alert
	Level   int
	OrgName string
}

// EmailPayload represents rendered email content.
type EmailPayload struct {
	Subject string
	Text    string
	HTML    string
}

var emailTemplate = template.Must(template.New("alert_email").Parse(`<html>
<body>
<h2>Compliance alert for {{.OrgName}}</h2>
<p><strong>{{.Message}}</strong></p>
<table>
<tr><td>Severity</td><td>{{.Severity}}</td></tr>
<tr><td>Type</td><td>{{.AlertType}}</td></tr>
<tr><td>Raised</td><td>{{.CreatedAt}}</td></tr>
<tr><td>Escalation level</td><td>{{.Level}}</td></tr>
</table>
<p>This alert is unconfirmed. Please review and confirm it in the dashboard.</p>
</body>
</html>`))

// BuildEmailPayload renders email subject, plain text and HTML bodies.
func BuildEmailPayload(msg *Message) (EmailPayload, error) {
	alert := msg.Alert
	subject := fmt.Sprintf("Compliance alert [%s]: %s", strings.ToUpper(alert.Severity), alert.AlertType)

	var html strings.Builder
	err := emailTemplate.Execute(&html, struct {
		OrgName   string
		Message   string
		Severity  string
		AlertType string
		CreatedAt string
		Level     int
	}{
		OrgName:   msg.OrgName,
		Message:   alert.Message,
		Severity:  alert.Severity,
		AlertType: alert.AlertType,
		CreatedAt: alert.CreatedAt.Format(time.RFC1123),
		Level:     msg.Level,
	})
	if err != nil {
		return EmailPayload{}, fmt.Errorf("failed to render email template: %w", err)
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("Compliance alert for %s\n", msg.OrgName))
	text.WriteString("========================\n\n")
	text.WriteString(fmt.Sprintf("Severity: %s\n", alert.Severity))
	text.WriteString(fmt.Sprintf("Type: %s\n", alert.AlertType))
	text.WriteString(fmt.Sprintf("Message: %s\n", alert.Message))
	text.WriteString(fmt.Sprintf("Raised: %s\n", alert.CreatedAt.Format(time.RFC1123)))
	text.WriteString(fmt.Sprintf("Escalation level: %d\n", msg.Level))
	text.WriteString("\nThis alert is unconfirmed. Please review and confirm it in the dashboard.\n")

	return EmailPayload{
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// BuildSMSBody builds the short text for the SMS channel.
func BuildSMSBody(msg *Message) string {
	alert := msg.Alert
	return fmt.Sprintf("[%s] Unconfirmed compliance alert (level %d): %s. Please confirm in the dashboard.",
		strings.ToUpper(alert.Severity), msg.Level, alert.Message)
}

// BuildWhatsAppBody builds the text for the WhatsApp channel.
func BuildWhatsAppBody(msg *Message) string {
	alert := msg.Alert
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Compliance alert for %s*\n", msg.OrgName))
	sb.WriteString(fmt.Sprintf("Severity: %s\n", alert.Severity))
	sb.WriteString(fmt.Sprintf("Escalation level: %d\n\n", msg.Level))
	sb.WriteString(alert.Message)
	sb.WriteString("\n\nThis alert is unconfirmed. Please confirm it in the dashboard.")
	return sb.String()
}

// BuildSpokenMessage builds the text-to-speech script for the call channel.
// Keep it plain: no markup, no abbreviations the voice engine would mangle.
func BuildSpokenMessage(msg *Message) string {
	alert := msg.Alert
	return fmt.Sprintf("This is an automated compliance call for %s. A critical alert has been unconfirmed for more than three days. The alert says: %s. Please open the dashboard and confirm it.",
		msg.OrgName, alert.Message)
}
