package service

import (
	"fmt"
	"net/smtp"
	"os"
	"time"

	"drawchat/model"

	"github.com/gomarkdown/markdown"
	"github.com/jordan-wright/email"
	"gorm.io/gorm"
)

type ReportService struct {
	DB *gorm.DB
}

// buildReport 汇总最近 24 小时的使用情况，返回 markdown 文本
func (s *ReportService) buildReport(since time.Time) (string, error) {
	users, err := model.CountUsersSince(s.DB, since)
	if err != nil {
		return "", fmt.Errorf("count users: %w", err)
	}
	conversations, err := model.CountConversationsSince(s.DB, since)
	if err != nil {
		return "", fmt.Errorf("count conversations: %w", err)
	}
	messages, err := model.CountMessagesSince(s.DB, since)
	if err != nil {
		return "", fmt.Errorf("count messages: %w", err)
	}

	report := fmt.Sprintf(`# drawchat 日报 %s

| 指标 | 最近 24 小时 |
| --- | --- |
| 新增用户 | %d |
| 新增会话 | %d |
| 新增消息 | %d |
`, time.Now().Format("2006-01-02"), users, conversations, messages)
	return report, nil
}

// SendDailyReport 定时任务入口；未配置 SMTP 时跳过
func (s *ReportService) SendDailyReport() error {
	host := os.Getenv("SMTP_HOST")
	to := os.Getenv("REPORT_TO")
	if host == "" || to == "" {
		logger.Infof("[scheduled task] smtp not configured, skipping daily report")
		return nil
	}

	report, err := s.buildReport(time.Now().Add(-24 * time.Hour))
	if err != nil {
		logger.Warnf("[scheduled task] build daily report error, %s", err)
		return err
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	e := email.NewEmail()
	e.From = user
	e.To = []string{to}
	e.Subject = "drawchat 日报 " + time.Now().Format("2006-01-02")
	e.HTML = markdown.ToHTML([]byte(report), nil, nil)

	if err := e.Send(host+":"+port, smtp.PlainAuth("", user, password, host)); err != nil {
		logger.Warnf("[scheduled task] send daily report error, %s", err)
		return fmt.Errorf("send daily report: %w", err)
	}
	logger.Infof("[scheduled task] daily report sent to %s", to)
	return nil
}
