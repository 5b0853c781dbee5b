package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"talentscout-go/internal/config"
	"talentscout-go/internal/logger"
)

// Notifier 提交成功后的邮件通知。尽力而为：发送失败只记日志，
// 绝不影响保存结果。SMTP服务器未配置时整个功能关闭。
type Notifier struct {
	cfg config.EmailConfig
}

// NewNotifier 创建邮件通知器
func NewNotifier(cfg config.EmailConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// Enabled 通知功能是否开启
func (n *Notifier) Enabled() bool {
	return n.cfg.SMTPServer != "" && n.cfg.SenderEmail != ""
}

// SendSubmissionConfirmation 向候选人发送提交确认邮件
func (n *Notifier) SendSubmissionConfirmation(candidateEmail, candidateName string) error {
	if !n.Enabled() {
		return nil
	}

	body := fmt.Sprintf(`Dear %s,

Thank you for completing your application with TalentScout!

Your application has been successfully submitted and our team will review it shortly.

Next Steps:
- Our technical team will review your responses
- You will be notified within 2-3 business days
- If selected, we'll schedule a follow-up interview

Thank you for your interest in joining our team!

Best regards,
TalentScout Team
`, candidateName)

	msg := strings.Join([]string{
		"From: " + n.cfg.SenderEmail,
		"To: " + candidateEmail,
		"Subject: Application Submitted - TalentScout",
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPServer, n.cfg.SMTPPort)
	auth := smtp.PlainAuth("", n.cfg.SenderEmail, n.cfg.SenderPassword, n.cfg.SMTPServer)

	// SendMail在服务器支持时自动走STARTTLS
	if err := smtp.SendMail(addr, auth, n.cfg.SenderEmail, []string{candidateEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("发送确认邮件失败: %w", err)
	}

	logger.Info().
		Str("to", candidateEmail).
		Msg("提交确认邮件已发送")
	return nil
}
