package controller

import (
	"fmt"
	"net/http"
	"testing"

	"drawchat/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationCRUDFlow(t *testing.T) {
	r, db := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/conversations", map[string]any{
		"user_id": 1,
		"title":   "海洋保护",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	created, ok := body["conversation"].(map[string]any)
	require.True(t, ok)
	convId := uint(created["id"].(float64))
	require.NotZero(t, convId)

	require.NoError(t, model.AppendMessage(db, &model.Message{
		UserId: 1, ConversationId: convId, Role: model.RoleUser, Content: "讲讲珊瑚礁",
	}))

	w, body = doJSON(t, r, http.MethodGet, "/api/conversations?user_id=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := body["conversations"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, "海洋保护", first["title"])
	assert.Equal(t, "讲讲珊瑚礁", first["preview"])

	path := fmt.Sprintf("/api/conversations/%d/messages?user_id=1", convId)
	w, body = doJSON(t, r, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 1)

	// 其它用户拿不到
	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/conversations/%d/messages?user_id=2", convId), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/conversations/%d", convId), map[string]any{
		"user_id": 1,
		"title":   "珊瑚礁笔记",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	renamed := body["conversation"].(map[string]any)
	assert.Equal(t, "珊瑚礁笔记", renamed["title"])

	w, body = doJSON(t, r, http.MethodGet, "/api/search?user_id=1&q=珊瑚", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	results, ok := body["results"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, results["conversations"])
	assert.NotEmpty(t, results["messages"])

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/conversations/%d?user_id=1", convId), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var orphans int64
	db.Model(&model.Message{}).Where("conversation_id = ?", convId).Count(&orphans)
	assert.Equal(t, int64(0), orphans)

	w, body = doJSON(t, r, http.MethodGet, "/api/conversations?user_id=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["conversations"])
}

func TestConversationBadRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/conversations", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/search?user_id=1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/conversations", map[string]any{"title": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/conversations/999?user_id=1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
