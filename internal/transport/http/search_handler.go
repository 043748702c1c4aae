package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"exambank/internal/app"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// SearchHandler serves live search over a websocket. Each keystroke sends
// the current term; the search runs once input pauses for the debounce
// interval.
type SearchHandler struct {
	service  *app.ExamService
	debounce time.Duration
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewSearchHandler(service *app.ExamService, debounce time.Duration, log logrus.FieldLogger) *SearchHandler {
	return &SearchHandler{
		service:  service,
		debounce: debounce,
		log:      log.WithField("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type searchPayload struct {
	Term string `json:"term"`
}

type resultsPayload struct {
	Term string `json:"term"`
	app.ListResult
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the request and streams debounced search results.
func (h *SearchHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := make(chan outboundMessage, 16)
	terms := make(chan string, 1)
	writerDone := make(chan struct{})
	searchDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		failed := false
		for msg := range send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write error")
				failed = true
			}
		}
	}()

	go func() {
		defer close(searchDone)
		h.debounceSearches(ctx, terms, send)
	}()

	send <- outboundMessage{Type: "results", Payload: h.results(ctx, "")}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "search":
			var payload searchPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage{Type: "error", Payload: errorResponse{Error: "invalid search payload"}}
				continue
			}
			terms <- payload.Term
		default:
			send <- outboundMessage{Type: "error", Payload: errorResponse{Error: "unsupported message type"}}
		}
	}

	close(terms)
	<-searchDone
	close(send)
	<-writerDone
}

// debounceSearches runs a search for the latest term once no new term has
// arrived for h.debounce. It returns when terms is closed.
func (h *SearchHandler) debounceSearches(ctx context.Context, terms <-chan string, send chan<- outboundMessage) {
	var (
		pending string
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case term, ok := <-terms:
			if !ok {
				return
			}
			if timer != nil {
				timer.Stop()
			}
			pending = term
			timer = time.NewTimer(h.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			send <- outboundMessage{Type: "results", Payload: h.results(ctx, pending)}
		}
	}
}

// results treats a blank term as no filter.
func (h *SearchHandler) results(ctx context.Context, term string) resultsPayload {
	if strings.TrimSpace(term) == "" {
		return resultsPayload{Term: term, ListResult: h.service.ListAll(ctx)}
	}
	return resultsPayload{Term: term, ListResult: h.service.Search(ctx, term)}
}
