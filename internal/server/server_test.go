package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboroido/HotpotGame/engine"
	"github.com/onboroido/HotpotGame/internal/store"
)

func testServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	st := store.NewMemory()
	ts := httptest.NewServer(New(st, log, engine.DefaultScoreTable(), 0))
	t.Cleanup(ts.Close)
	return ts, st
}

func createRoom(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(ts.URL+"/rooms", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["roomId"])
	return body["roomId"]
}

func wsURL(ts *httptest.Server, room, name string) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/rooms/" + room + "/ws?name=" + name
}

func TestCreateRoomEndpoint(t *testing.T) {
	ts, st := testServer(t)
	room := createRoom(t, ts)

	doc, err := st.Load(context.Background(), room)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusWaiting, doc.Status)
}

func TestWebsocketJoinAndStart(t *testing.T) {
	ctx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()

	ts, _ := testServer(t)
	room := createRoom(t, ts)

	conn, _, err := websocket.Dial(ctx, wsURL(ts, room, "Alice"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Joining pushes an initial snapshot.
	var frame Frame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	require.Equal(t, "state", frame.Type)
	require.NotNil(t, frame.State)
	assert.Equal(t, engine.StatusWaiting, frame.State.Status)
	assert.Equal(t, 0, frame.State.You)

	require.NoError(t, wsjson.Write(ctx, conn, ActionFrame{Type: "start"}))

	for {
		require.NoError(t, wsjson.Read(ctx, conn, &frame))
		if frame.State.Status != engine.StatusPlaying {
			continue
		}
		assert.Len(t, frame.State.Seats, engine.NumSeats)
		assert.Len(t, frame.State.Seats[0].Hand, engine.HandSize)
		for i := 1; i < engine.NumSeats; i++ {
			assert.True(t, frame.State.Seats[i].Agent, "seat %d should be CPU filled", i)
			assert.Nil(t, frame.State.Seats[i].Hand)
		}
		return
	}
}

func TestWebsocketRequiresName(t *testing.T) {
	ts, _ := testServer(t)
	room := createRoom(t, ts)

	resp, err := http.Get(ts.URL + "/rooms/" + room + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebsocketUnknownRoom(t *testing.T) {
	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()

	ts, _ := testServer(t)

	conn, _, err := websocket.Dial(ctx, wsURL(ts, "nope", "Alice"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// The server closes the socket instead of seating the client.
	var frame Frame
	err = wsjson.Read(ctx, conn, &frame)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestWebsocketDisconnectReleasesSeat(t *testing.T) {
	ctx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	ts, st := testServer(t)
	room := createRoom(t, ts)

	conn, _, err := websocket.Dial(ctx, wsURL(ts, room, "Alice"), nil)
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool {
		doc, err := st.Load(ctx, room)
		return err == nil && len(doc.Seats) == 0
	}, 5*time.Second, 20*time.Millisecond, "seat should be released on disconnect")
}
