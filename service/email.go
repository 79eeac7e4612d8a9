package service

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"time"

	"smartbudget/config"
	"smartbudget/models"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled 未开启邮件发送
var ErrEmailDisabled = &Error{Kind: KindInvalidInput, Message: "email delivery is not enabled"}

// EmailService 邮件服务，用于发送消费报表
type EmailService struct {
	cfg  *config.EmailConfig
	send func(*gomail.Message) error
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

// SendExpenseReport 将区间内的消费记录生成 Excel 附件发送给用户
func (s *EmailService) SendExpenseReport(user *models.User, expenses []models.Expense, r TimeRange) error {
	if !s.cfg.Enabled {
		return ErrEmailDisabled
	}

	buf, err := BuildExpenseWorkbook(expenses)
	if err != nil {
		return storageFault("failed to build report", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", "Smart Budget expense report")
	m.SetBody("text/html", s.generateReportBody(user.Name, expenses, r))

	data := buf.Bytes()
	m.Attach(reportFilename(time.Now()), gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	}))

	if err := s.send(m); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}

func (s *EmailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

// generateReportBody 生成报表邮件正文
func (s *EmailService) generateReportBody(name string, expenses []models.Expense, r TimeRange) string {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}

	period := "all time"
	switch {
	case r.Start != nil && r.End != nil:
		period = fmt.Sprintf("%s to %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	case r.Start != nil:
		period = "since " + r.Start.Format("2006-01-02")
	case r.End != nil:
		period = "until " + r.End.Format("2006-01-02")
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; background: #f5f5f5; padding: 20px;">
    <div style="max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; padding: 30px;">
        <h2 style="color: #2563eb;">Smart Budget</h2>
        <p>Hi <strong>%s</strong>,</p>
        <p>Your expense report for <strong>%s</strong> is attached.</p>
        <p>%d expenses, %.2f in total.</p>
        <p style="color: #6c757d; font-size: 12px;">This email was sent automatically, please do not reply.</p>
    </div>
</body>
</html>
`, html.EscapeString(name), period, len(expenses), models.RoundAmount(total))
}

func reportFilename(now time.Time) string {
	return fmt.Sprintf("expenses_%s.xlsx", now.Format("20060102_150405"))
}
