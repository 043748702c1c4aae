package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"exambank/internal/app"
	"github.com/gorilla/websocket"
)

type resultsMessage struct {
	Type    string `json:"type"`
	Payload struct {
		Term   string `json:"term"`
		Source string `json:"source"`
		Exams  []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"exams"`
		Error string `json:"error"`
	} `json:"payload"`
}

func TestLiveSearchDebouncesKeystrokes(t *testing.T) {
	server := httptest.NewServer(newTestRouter(newTestService(app.Options{})))
	defer server.Close()

	conn := dialSearch(t, server.URL)
	defer conn.Close()

	initial := readMessage(t, conn)
	if initial.Type != "results" || len(initial.Payload.Exams) != 2 {
		t.Fatalf("expected unfiltered initial results, got %+v", initial)
	}

	for _, term := range []string{"ก", "กรุ", "กรุงเทพ"} {
		if err := conn.WriteJSON(map[string]any{"type": "search", "payload": map[string]string{"term": term}}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	// Intermediate terms may or may not be coalesced; the final term always arrives.
	for {
		msg := readMessage(t, conn)
		if msg.Type != "results" {
			t.Fatalf("unexpected message %+v", msg)
		}
		if msg.Payload.Term != "กรุงเทพ" {
			continue
		}
		if len(msg.Payload.Exams) != 1 || msg.Payload.Exams[0].ID != app.SampleExamID2 {
			t.Fatalf("expected only the second sample, got %+v", msg.Payload.Exams)
		}
		if msg.Payload.Source != string(app.SourceFallbackEmpty) {
			t.Fatalf("expected fallback source, got %s", msg.Payload.Source)
		}
		break
	}
}

func TestLiveSearchBlankTermIsUnfiltered(t *testing.T) {
	server := httptest.NewServer(newTestRouter(newTestService(app.Options{})))
	defer server.Close()

	conn := dialSearch(t, server.URL)
	defer conn.Close()
	_ = readMessage(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "search", "payload": map[string]string{"term": "   "}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "results" || len(msg.Payload.Exams) != 2 {
		t.Fatalf("expected every exam, got %+v", msg)
	}
}

func TestLiveSearchRejectsUnknownType(t *testing.T) {
	server := httptest.NewServer(newTestRouter(newTestService(app.Options{})))
	defer server.Close()

	conn := dialSearch(t, server.URL)
	defer conn.Close()
	_ = readMessage(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "subscribe"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "error" || msg.Payload.Error == "" {
		t.Fatalf("expected error message, got %+v", msg)
	}
}

func dialSearch(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws/search"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) resultsMessage {
	t.Helper()
	var msg resultsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}
