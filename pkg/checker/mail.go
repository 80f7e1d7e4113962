package checker

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/dtnitsch/linkcheck/models"
)

// smtpProbeTimeout bounds the reachability probe independently of the
// per-request timeout, since MX round-trips are slow.
const smtpProbeTimeout = 10 * time.Second

// checkMail verifies a mailto: target. With the mail capability off
// the scheme is unsupported and the address is not examined. With it
// on, the address is checked syntactically, and the SMTP reachability
// probe runs only when SMTP verification is also enabled.
func (c *Client) checkMail(ctx context.Context, req models.Request) models.Status {
	if !c.cfg.IncludeMail {
		return models.Unsupported("mailto")
	}

	address := req.URI.MailAddress()
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return models.ErrorStatus(models.ErrMail, fmt.Sprintf("invalid address %q", address))
	}

	if !c.cfg.VerifyMailSMTP {
		return models.Ok(200)
	}

	probeCtx, cancel := context.WithTimeout(ctx, smtpProbeTimeout)
	defer cancel()
	if err := probeSMTP(probeCtx, parsed.Address); err != nil {
		return models.ErrorStatus(models.ErrMail, err.Error())
	}
	return models.Ok(200)
}

// probeSMTP resolves the domain's MX records and attempts an RCPT
// handshake against the preferred exchanger.
func probeSMTP(ctx context.Context, address string) error {
	at := strings.LastIndexByte(address, '@')
	if at < 0 {
		return fmt.Errorf("invalid address %q", address)
	}
	domain := address[at+1:]

	records, err := net.DefaultResolver.LookupMX(ctx, domain)
	if err != nil || len(records) == 0 {
		return fmt.Errorf("no MX records for %s", domain)
	}

	host := strings.TrimSuffix(records[0].Host, ".")
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, "25"))
	if err != nil {
		return fmt.Errorf("cannot reach %s: %w", host, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("SMTP handshake with %s failed: %w", host, err)
	}
	defer client.Close()

	if err := client.Hello("localhost"); err != nil {
		return fmt.Errorf("SMTP HELO failed: %w", err)
	}
	if err := client.Mail("linkcheck@localhost"); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}
	if err := client.Rcpt(address); err != nil {
		return fmt.Errorf("recipient %s rejected: %w", address, err)
	}
	return nil
}
