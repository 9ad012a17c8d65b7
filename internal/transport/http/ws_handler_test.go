package http

import (
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/roomrelay-server/internal/config"
	"github.com/vovakirdan/roomrelay-server/internal/core"
	"github.com/vovakirdan/roomrelay-server/internal/proto"
)

const testAdminSecret = "transport-test-secret"

// outboundRaw keeps the data payload raw so tests can decode it per type.
type outboundRaw struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	sessions := core.NewSessionStore(testAdminSecret)
	catalog := core.NewCatalog(sessions, core.FallbackRoom)
	hub := core.NewHub(sessions, catalog, nil, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := NewServer(hub, config.Default(), &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close(websocket.StatusNormalClosure, "test done")
	})
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: raw}))
}

// waitFor reads envelopes until one of the wanted type arrives, skipping
// unrelated broadcasts like roomList refreshes.
func waitFor(t *testing.T, conn *websocket.Conn, msgType string) outboundRaw {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		var out outboundRaw
		require.NoError(t, wsjson.Read(ctx, conn, &out), "waiting for %q", msgType)
		if out.Type == msgType {
			return out
		}
	}
}

func registerClient(t *testing.T, conn *websocket.Conn, name, roleToken string) proto.RegisteredData {
	t.Helper()
	send(t, conn, proto.InboundTypeRegister, proto.RegisterData{DisplayName: name, RoleToken: roleToken})
	out := waitFor(t, conn, proto.OutboundTypeRegistered)
	var reg proto.RegisteredData
	require.NoError(t, json.Unmarshal(out.Data, &reg))
	require.Equal(t, name, reg.DisplayName)
	return reg
}

func TestWebSocketRegisterJoinAndChat(t *testing.T) {
	ts := startTestServer(t)

	alice := dialWS(t, ts)
	bob := dialWS(t, ts)

	registerClient(t, alice, "alice", "")
	registerClient(t, bob, "bob", "")

	send(t, alice, proto.InboundTypeJoinRoom, proto.RoomNameData{RoomName: core.FallbackRoom})
	out := waitFor(t, alice, proto.OutboundTypeJoinedRoom)
	var joined proto.JoinedRoomData
	require.NoError(t, json.Unmarshal(out.Data, &joined))
	assert.Equal(t, core.FallbackRoom, joined.RoomName)
	require.Len(t, joined.Members, 1)

	send(t, bob, proto.InboundTypeJoinRoom, proto.RoomNameData{RoomName: core.FallbackRoom})
	waitFor(t, bob, proto.OutboundTypeJoinedRoom)

	out = waitFor(t, alice, proto.OutboundTypeUserJoined)
	var userJoined proto.UserJoinedData
	require.NoError(t, json.Unmarshal(out.Data, &userJoined))
	assert.Equal(t, "bob", userJoined.Member.DisplayName)

	send(t, alice, proto.InboundTypeTextMessage, proto.TextMessageData{Content: "hello room"})
	for _, conn := range []*websocket.Conn{alice, bob} {
		out = waitFor(t, conn, proto.OutboundTypeNewText)
		var msg proto.NewTextMessageData
		require.NoError(t, json.Unmarshal(out.Data, &msg))
		assert.Equal(t, "alice", msg.DisplayName)
		assert.Equal(t, "hello room", msg.Content)
		assert.NotZero(t, msg.Timestamp)
	}
}

func TestWebSocketRejectsBeforeRegister(t *testing.T) {
	ts := startTestServer(t)
	conn := dialWS(t, ts)

	send(t, conn, proto.InboundTypeJoinRoom, proto.RoomNameData{RoomName: core.FallbackRoom})
	out := waitFor(t, conn, proto.OutboundTypeError)
	require.NotNil(t, out.Error)
	assert.Equal(t, core.ErrCodeNotRegistered, out.Error.Code)
}

func TestWebSocketMalformedEnvelope(t *testing.T) {
	ts := startTestServer(t)
	conn := dialWS(t, ts)

	send(t, conn, "bogusType", struct{}{})
	out := waitFor(t, conn, proto.OutboundTypeError)
	require.NotNil(t, out.Error)
	assert.Equal(t, core.ErrCodeValidation, out.Error.Code)

	// The connection survives a bad envelope.
	registerClient(t, conn, "survivor", "")
}

func TestWebSocketSignalRelay(t *testing.T) {
	ts := startTestServer(t)

	alice := dialWS(t, ts)
	bob := dialWS(t, ts)

	aliceReg := registerClient(t, alice, "alice", "")
	bobReg := registerClient(t, bob, "bob", "")

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	send(t, alice, proto.InboundTypeOffer, proto.SignalData{
		TargetSessionID: bobReg.SessionID,
		Offer:           offer,
	})

	out := waitFor(t, bob, proto.OutboundTypeOffer)
	var relay proto.SignalRelayData
	require.NoError(t, json.Unmarshal(out.Data, &relay))
	assert.Equal(t, aliceReg.SessionID, relay.SenderSessionID)
	assert.JSONEq(t, string(offer), string(relay.Offer))
}

func TestWebSocketAdminRename(t *testing.T) {
	ts := startTestServer(t)

	admin := dialWS(t, ts)
	reg := registerClient(t, admin, "root", testAdminSecret)
	assert.Equal(t, string(core.RoleAdmin), reg.Role)

	send(t, admin, proto.InboundTypeCreateRoom, proto.RoomNameData{RoomName: "Tech Talk"})
	send(t, admin, proto.InboundTypeJoinRoom, proto.RoomNameData{RoomName: "Tech Talk"})
	waitFor(t, admin, proto.OutboundTypeJoinedRoom)

	send(t, admin, proto.InboundTypeRenameRoom, proto.RenameRoomData{OldName: "Tech Talk", NewName: "Dev"})
	out := waitFor(t, admin, proto.OutboundTypeRoomRenamed)
	var renamed proto.RoomRenamedData
	require.NoError(t, json.Unmarshal(out.Data, &renamed))
	assert.Equal(t, "Tech Talk", renamed.OldName)
	assert.Equal(t, "Dev", renamed.NewName)
}

func TestRoomListEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := stdhttp.Get(ts.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	var list proto.RoomListData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, core.FallbackRoom, list.Rooms[0].Name)
	assert.Equal(t, 0, list.Rooms[0].MemberCount)
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := stdhttp.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}
