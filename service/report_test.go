package service

import (
	"testing"
	"time"

	"drawchat/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	db := newTestDB(t)
	s := &ReportService{DB: db}

	require.NoError(t, model.CreateUser(db, &model.User{Username: "alice", Email: "a@x.com", Password: "h"}))
	conversation := &model.Conversation{UserId: 1, Title: "t"}
	require.NoError(t, model.CreateConversation(db, conversation))
	require.NoError(t, model.AppendMessage(db, &model.Message{
		UserId: 1, ConversationId: conversation.ID, Role: model.RoleUser, Content: "hi",
	}))
	require.NoError(t, model.AppendMessage(db, &model.Message{
		UserId: 1, ConversationId: conversation.ID, Role: model.RoleAssistant, Content: "hello",
	}))

	report, err := s.buildReport(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Contains(t, report, "| 新增用户 | 1 |")
	assert.Contains(t, report, "| 新增会话 | 1 |")
	assert.Contains(t, report, "| 新增消息 | 2 |")

	// 时间窗之外不计数
	empty, err := s.buildReport(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Contains(t, empty, "| 新增用户 | 0 |")
}

func TestSendDailyReportSkipsWithoutSMTP(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("REPORT_TO", "")
	s := &ReportService{DB: newTestDB(t)}
	assert.NoError(t, s.SendDailyReport())
}
