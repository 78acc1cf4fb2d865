package email

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"path"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	// SendPayslip mails the month's payslip; an empty attachmentPath sends the notice alone.
	SendPayslip(to, employeeName, month, attachmentPath string) error
	SendLeaveDecision(to, employeeName, leaveType, fromDate, toDate, status string, comments *string) error
	SendWelcome(to, employeeName, username, password string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg         config.SMTPConfig
	companyName string
	loginURL    string
	templates   *template.Template
	files       storage.FileStorage
	send        sendFunc
	backoff     time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig, app config.AppConfig, files storage.FileStorage) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:         cfg,
		companyName: app.Name,
		loginURL:    app.FrontendURL + "/login",
		templates:   tmpl,
		files:       files,
		send:        smtp.SendMail,
		backoff:     time.Second,
	}, nil
}

type attachment struct {
	filename    string
	contentType string
	content     []byte
}

type payslipEmailData struct {
	EmployeeName  string
	Month         string
	CompanyName   string
	HasAttachment bool
}

func (s *emailServiceImpl) SendPayslip(to, employeeName, month, attachmentPath string) error {
	var files []attachment
	if attachmentPath != "" {
		a, err := s.loadAttachment(attachmentPath)
		if err != nil {
			return err
		}
		files = append(files, a)
	}

	data := payslipEmailData{
		EmployeeName:  employeeName,
		Month:         month,
		CompanyName:   s.companyName,
		HasAttachment: len(files) > 0,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "payslip.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Payslip for %s", month), body.String(), files...)
}

type leaveDecisionEmailData struct {
	EmployeeName string
	LeaveType    string
	FromDate     string
	ToDate       string
	Status       string
	Comments     string
	CompanyName  string
}

func (s *emailServiceImpl) SendLeaveDecision(to, employeeName, leaveType, fromDate, toDate, status string, comments *string) error {
	data := leaveDecisionEmailData{
		EmployeeName: employeeName,
		LeaveType:    leaveType,
		FromDate:     fromDate,
		ToDate:       toDate,
		Status:       status,
		CompanyName:  s.companyName,
	}
	if comments != nil {
		data.Comments = *comments
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "leave_decision.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Leave request %s", status), body.String())
}

type welcomeEmailData struct {
	EmployeeName string
	Username     string
	Password     string
	LoginURL     string
	CompanyName  string
}

func (s *emailServiceImpl) SendWelcome(to, employeeName, username, password string) error {
	data := welcomeEmailData{
		EmployeeName: employeeName,
		Username:     username,
		Password:     password,
		LoginURL:     s.loginURL,
		CompanyName:  s.companyName,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "welcome.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Welcome to %s", s.companyName), body.String())
}

func (s *emailServiceImpl) loadAttachment(p string) (attachment, error) {
	if s.files == nil {
		return attachment{}, fmt.Errorf("no file storage configured for attachment %s", p)
	}
	rc, err := s.files.Download(context.Background(), p)
	if err != nil {
		return attachment{}, fmt.Errorf("failed to load attachment: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}

	ct := mime.TypeByExtension(path.Ext(p))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return attachment{filename: path.Base(p), contentType: ct, content: content}, nil
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string, files ...attachment) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From
	message, err := buildMessage(fmt.Sprintf("%s <%s>", s.cfg.FromName, from), to, subject, htmlBody, files)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(s.backoff * time.Duration(1<<(attempt-1)))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

// buildMessage renders an RFC 5322 message: plain HTML when there are no
// attachments, multipart/mixed otherwise.
func buildMessage(from, to, subject, htmlBody string, files []attachment) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(files) == 0 {
		buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		buf.WriteString(htmlBody)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}
	if _, err := io.WriteString(part, htmlBody); err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}

	for _, f := range files {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", f.contentType, f.filename)},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", f.filename)},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build message: %w", err)
		}
		if err := writeBase64Lines(part, f.content); err != nil {
			return nil, fmt.Errorf("failed to build message: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}
	return buf.Bytes(), nil
}

// writeBase64Lines wraps encoded output at 76 characters per RFC 2045.
func writeBase64Lines(w io.Writer, content []byte) error {
	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 76 {
		if _, err := io.WriteString(w, encoded[:76]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := io.WriteString(w, encoded+"\r\n")
	return err
}
