package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSyncReport(toEmail string, service string, total int, imported int, failed int) error
	SendSyncFailure(toEmail string, service string, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) from() string {
	if s.senderName != "" {
		return fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	}
	return s.senderEmail
}

func (s *emailService) SendSyncReport(toEmail string, service string, total int, imported int, failed int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from())
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Sync finished: %s", service))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your %s sync has finished</h2>
			<table style="border-collapse: collapse;">
				<tr><td style="padding: 4px 12px;">Items found</td><td style="padding: 4px 12px;"><b>%d</b></td></tr>
				<tr><td style="padding: 4px 12px;">Imported</td><td style="padding: 4px 12px;"><b>%d</b></td></tr>
				<tr><td style="padding: 4px 12px;">Failed</td><td style="padding: 4px 12px;"><b>%d</b></td></tr>
			</table>
			<p>Imported items are searchable once processing completes.</p>
		</div>
	`, service, total, imported, failed)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send sync report to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Sync report sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendSyncFailure(toEmail string, service string, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from())
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Sync failed: %s", service))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your %s sync could not complete</h2>
			<p>%s</p>
			<p>You can retry the sync from your dashboard at any time.</p>
		</div>
	`, service, reason)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send sync failure to %s: %v\n", toEmail, err)
		return err
	}
	return nil
}
