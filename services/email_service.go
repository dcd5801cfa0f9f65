package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/courtside/league-system/config"
	"github.com/courtside/league-system/repositories"
)

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	if len(to) == 0 {
		return nil
	}
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Implicit TLS.
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		// STARTTLS, usually port 587.
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

var matchResultTemplate = template.Must(template.New("matchResult").Parse(`
<h2>{{.LeagueName}} — jornada {{.Jornada}}</h2>
<p><b>{{.TeamA}}</b> {{.ScoreA}} : {{.ScoreB}} <b>{{.TeamB}}</b></p>
`))

var leagueCompletedTemplate = template.Must(template.New("leagueCompleted").Parse(`
<h2>{{.LeagueName}} has finished!</h2>
{{if .Champion}}<p>Champions: <b>{{.Champion.TeamName}}</b> ({{.Champion.Player1}} and {{.Champion.Player2}}) with {{.Champion.Points}} points.</p>{{end}}
<table border="1" cellpadding="4">
	<tr><th>#</th><th>Team</th><th>P</th><th>W</th><th>D</th><th>L</th><th>Pts</th></tr>
	{{range .Standings}}
	<tr><td>{{.Position}}</td><td>{{.TeamName}}</td><td>{{.Played}}</td><td>{{.Wins}}</td><td>{{.Draws}}</td><td>{{.Losses}}</td><td>{{.Points}}</td></tr>
	{{end}}
</table>
`))

// emailNotifier delivers league events to every enrolled player by mail.
type emailNotifier struct {
	email      *EmailService
	leagueRepo repositories.LeagueRepository
}

func NewEmailNotifier(email *EmailService, leagueRepo repositories.LeagueRepository) Notifier {
	return &emailNotifier{email: email, leagueRepo: leagueRepo}
}

func (n *emailNotifier) recipients(ctx context.Context, leagueID int) ([]string, error) {
	players, err := n.leagueRepo.ListPlayers(ctx, nil, leagueID)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(players))
	for _, p := range players {
		if p.Email != "" {
			emails = append(emails, p.Email)
		}
	}
	return emails, nil
}

func (n *emailNotifier) MatchResultRecorded(ctx context.Context, event MatchResultEvent) error {
	to, err := n.recipients(ctx, event.LeagueID)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	if err := matchResultTemplate.Execute(&body, event); err != nil {
		return err
	}
	subject := fmt.Sprintf("%s: %s vs %s result", event.LeagueName, event.TeamA, event.TeamB)
	return n.email.SendEmail(to, subject, body.String())
}

func (n *emailNotifier) LeagueCompleted(ctx context.Context, event LeagueCompletedEvent) error {
	to, err := n.recipients(ctx, event.LeagueID)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	if err := leagueCompletedTemplate.Execute(&body, event); err != nil {
		return err
	}
	subject := fmt.Sprintf("%s has finished", event.LeagueName)
	return n.email.SendEmail(to, subject, body.String())
}
