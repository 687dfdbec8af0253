package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"drawchat/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testImgBase64 = "aVZCT1J3MEtHZ28="

func newFakeImageServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		require.Equal(t, "/image", r.URL.Path)
		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Prompt)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"respond": map[string]string{
				"img_base64": testImgBase64,
			},
		})
	}))
}

func newImageService(t *testing.T, upstream *httptest.Server) *ImageService {
	t.Helper()
	db := newTestDB(t)
	return &ImageService{
		DB:      db,
		BaseURL: upstream.URL,
		Client:  upstream.Client(),
	}
}

func TestGenerateAndPersistWithConversation(t *testing.T) {
	calls := 0
	upstream := newFakeImageServer(t, &calls)
	defer upstream.Close()
	s := newImageService(t, upstream)

	conversation := &model.Conversation{UserId: 1, Title: "画图"}
	require.NoError(t, model.CreateConversation(s.DB, conversation))

	img, err := s.GenerateAndPersist("req", &ImageInput{
		Message:        "coral reef at dusk",
		UserId:         1,
		ConversationId: &conversation.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, testImgBase64, img)
	assert.Equal(t, 1, calls)

	messages, err := model.ListMessages(s.DB, conversation.ID, 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, model.RoleAssistant, messages[0].Role)
	assert.True(t, messages[0].HasImage)
	assert.Equal(t, testImgBase64, messages[0].ImageData)
}

func TestGenerateWithoutConversationSkipsPersistence(t *testing.T) {
	calls := 0
	upstream := newFakeImageServer(t, &calls)
	defer upstream.Close()
	s := newImageService(t, upstream)

	img, err := s.GenerateAndPersist("req", &ImageInput{Message: "a lighthouse", UserId: 1})
	require.NoError(t, err)
	assert.Equal(t, testImgBase64, img)

	var count int64
	s.DB.Model(&model.Message{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGenerateForeignConversationSkipsUpstream(t *testing.T) {
	calls := 0
	upstream := newFakeImageServer(t, &calls)
	defer upstream.Close()
	s := newImageService(t, upstream)

	foreign := &model.Conversation{UserId: 2, Title: "别人的"}
	require.NoError(t, model.CreateConversation(s.DB, foreign))

	_, err := s.GenerateAndPersist("req", &ImageInput{
		Message:        "x",
		UserId:         1,
		ConversationId: &foreign.ID,
	})
	assert.ErrorIs(t, err, model.ErrConversationNotFound)
	// 归属校验在上游调用之前
	assert.Equal(t, 0, calls)
}

func TestGenerateUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer upstream.Close()
	s := newImageService(t, upstream)

	conversation := &model.Conversation{UserId: 1, Title: "画图"}
	require.NoError(t, model.CreateConversation(s.DB, conversation))

	_, err := s.GenerateAndPersist("req", &ImageInput{
		Message:        "x",
		UserId:         1,
		ConversationId: &conversation.ID,
	})
	assert.Error(t, err)

	var count int64
	s.DB.Model(&model.Message{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGenerateMalformedPayload(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer upstream.Close()
	s := newImageService(t, upstream)

	_, err := s.Generate("req", "x")
	assert.Error(t, err)
}
