package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	wsconn "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/chat"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatHistory struct {
	RoomID   string               `json:"roomId"`
	Messages []models.ChatMessage `json:"messages"`
}

func (suite *HandlersTestSuite) sendChat(sender, receiver, text string) websocket.ReceiveMessagePayload {
	w := suite.request(http.MethodPost, "/api/chats", map[string]string{
		"sender": sender, "receiver": receiver, "text": text,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[websocket.ReceiveMessagePayload](suite.T(), w)
}

func (suite *HandlersTestSuite) TestSendAndLoadChat() {
	t := suite.T()

	first := suite.sendChat("222", "111", "hello")
	assert.Equal(t, "111_222", first.RoomID)
	assert.Equal(t, "222", first.Sender)
	suite.sendChat("111", "222", "hey")

	w := suite.request(http.MethodGet, "/api/chats/111/222", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeBody[chatHistory](t, w)
	assert.Equal(t, "111_222", history.RoomID)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "hello", history.Messages[0].Text)
	assert.Equal(t, "hey", history.Messages[1].Text)
}

func (suite *HandlersTestSuite) TestChatHistoryOfStrangersIsEmpty() {
	w := suite.request(http.MethodGet, "/api/chats/333/444", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	history := decodeBody[chatHistory](suite.T(), w)
	assert.NotNil(suite.T(), history.Messages)
	assert.Empty(suite.T(), history.Messages)
}

func (suite *HandlersTestSuite) TestSendChatValidation() {
	w := suite.request(http.MethodPost, "/api/chats", map[string]string{"sender": "111", "receiver": "222"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "text", decodeBody[map[string]interface{}](suite.T(), w)["field"])
}

func (suite *HandlersTestSuite) TestConcurrentSendsAreAllStored() {
	t := suite.T()
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(map[string]string{"sender": "111", "receiver": "222", "text": "ping"})
			req := httptest.NewRequest(http.MethodPost, "/api/chats", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			suite.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusCreated, w.Code)
		}()
	}
	wg.Wait()

	history := decodeBody[chatHistory](t, suite.request(http.MethodGet, "/api/chats/222/111", nil))
	require.Len(t, history.Messages, n)
	seen := map[int64]bool{}
	for _, m := range history.Messages {
		seen[m.Seq] = true
	}
	assert.Len(t, seen, n)
}

func (suite *HandlersTestSuite) TestListUserChats() {
	t := suite.T()
	suite.sendChat("111", "222", "a")
	suite.sendChat("111", "333", "b")
	suite.sendChat("222", "333", "c")

	w := suite.request(http.MethodGet, "/api/chats/user/111", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summaries := decodeBody[[]chat.Summary](t, w)
	require.Len(t, summaries, 2)
	withs := []string{summaries[0].With, summaries[1].With}
	assert.ElementsMatch(t, []string{"222", "333"}, withs)
}

func (suite *HandlersTestSuite) TestDeleteChatInEitherOrder() {
	t := suite.T()
	suite.sendChat("111", "222", "a")

	w := suite.request(http.MethodDelete, "/api/chats/222/111", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, "/api/chats/111/222", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteChatMessageAtIndex() {
	t := suite.T()
	suite.sendChat("111", "222", "first")
	suite.sendChat("111", "222", "second")

	w := suite.request(http.MethodDelete, "/api/chats/111/222/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodDelete, "/api/chats/111/222/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = suite.request(http.MethodDelete, "/api/chats/111/222/0", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	history := decodeBody[chatHistory](t, suite.request(http.MethodGet, "/api/chats/111/222", nil))
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "second", history.Messages[0].Text)
}

func (suite *HandlersTestSuite) TestDeleteChatMessageByID() {
	t := suite.T()
	sent := suite.sendChat("111", "222", "oops")
	suite.sendChat("111", "222", "keep")

	w := suite.request(http.MethodDelete, "/api/chats/222/111/messages/"+sent.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodDelete, "/api/chats/222/111/messages/"+sent.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	history := decodeBody[chatHistory](t, suite.request(http.MethodGet, "/api/chats/111/222", nil))
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "keep", history.Messages[0].Text)
}

func (suite *HandlersTestSuite) TestDeleteAllChatsNeedsConfirmation() {
	t := suite.T()
	suite.sendChat("111", "222", "a")
	suite.sendChat("333", "444", "b")

	w := suite.request(http.MethodDelete, "/api/chats/delete-all", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodDelete, "/api/chats/delete-all?confirm=yes", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodDelete, "/api/chats/delete-all", map[string]string{"confirm": BulkDeleteConfirmation})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decodeBody[map[string]interface{}](t, w)["deleted"])

	w = suite.request(http.MethodGet, "/api/chats/user/111", nil)
	assert.Empty(t, decodeBody[[]chat.Summary](t, w))
}

func (suite *HandlersTestSuite) TestDeleteAllChatsDisabled() {
	suite.handlers.opts.EnableBulkDelete = false
	w := suite.request(http.MethodDelete, "/api/chats/delete-all?confirm="+BulkDeleteConfirmation, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// A message sent over HTTP reaches sockets that joined the room.
func (suite *HandlersTestSuite) TestSendChatReachesWebSocketRoom() {
	t := suite.T()

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	})
	presence := websocket.NewPresence(hub, suite.repos.Users, nil)
	gateway := websocket.NewGateway(hub, presence, chat.NewRouter(suite.repos.Chats))
	suite.handlers.SetGateway(gateway)

	r := gin.New()
	suite.handlers.Register(r.Group("/api"))
	mux := http.NewServeMux()
	mux.Handle("/api/ws", websocket.NewHandler(gateway, nil))
	mux.Handle("/", r)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := wsconn.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	defer conn.Close(wsconn.StatusNormalClosure, "")

	readUntil := func(msgType string) *websocket.Message {
		for {
			var msg websocket.Message
			require.NoError(t, wsjson.Read(ctx, conn, &msg))
			if msg.Type == msgType {
				return &msg
			}
		}
	}
	readUntil(websocket.MessageTypeSystem)

	join := websocket.NewMessage(websocket.MessageTypeJoin, websocket.JoinPayload{RoomID: chat.RoomIDFor("111", "222")})
	join.ID = "join-1"
	require.NoError(t, wsjson.Write(ctx, conn, join))
	readUntil(websocket.MessageTypeAck)

	body, _ := json.Marshal(map[string]string{"sender": "111", "receiver": "222", "text": "over http"})
	resp, err := http.Post(srv.URL+"/api/chats", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	msg := readUntil(websocket.MessageTypeReceiveMessage)
	var got websocket.ReceiveMessagePayload
	require.NoError(t, msg.ParsePayload(&got))
	assert.Equal(t, "over http", got.Text)
	assert.Equal(t, "111_222", got.RoomID)
}
