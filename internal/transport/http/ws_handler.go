package http

import (
	"encoding/json"
	"log"
	"net/http"

	"funnel-player-service/internal/app"
	"funnel-player-service/internal/screen"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.ScreenService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ScreenService) *WSHandler {
	return &WSHandler{
		service: service,
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

type selectPayload struct {
	OptionID string `json:"optionId"`
	InBranch bool   `json:"inBranch,omitempty"`
}

type inputPayload struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	InBranch bool   `json:"inBranch,omitempty"`
}

type popupPayload struct {
	OptionID string `json:"optionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// screen play use cases. Each connection enters the screen fresh and tears
// the session down when the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	screenID := r.URL.Query().Get("screenId")
	if sessionID == "" || screenID == "" {
		http.Error(w, "missing sessionId or screenId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	entered, err := h.service.Enter(r.Context(), sessionID, screenID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID, screenID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(r.Context(), sessionID, screenID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "screen", Payload: update.View}:
				case <-closeSignals:
					return
				}
				if update.Response != nil {
					select {
					case send <- outboundMessage[any]{Type: "response", Payload: update.Response}:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "entered", Payload: entered}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		ev, err := decodeEvent(inbound)
		if err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			continue
		}
		if _, _, err := h.service.Apply(r.Context(), sessionID, screenID, ev); err != nil {
			// Applied views and responses reach the client through the
			// subscription pump; only failures are reported here.
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func decodeEvent(msg inboundMessage) (screen.Event, error) {
	switch msg.Type {
	case "select":
		var p selectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, errInvalidPayload("select")
		}
		return screen.SelectOption{OptionID: p.OptionID, InBranch: p.InBranch}, nil
	case "input":
		var p inputPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, errInvalidPayload("input")
		}
		return screen.EditInput{Key: p.Key, Value: p.Value, InBranch: p.InBranch}, nil
	case "button":
		return screen.PressButton{}, nil
	case "popup":
		var p popupPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, errInvalidPayload("popup")
		}
		return screen.ChoosePopupOption{OptionID: p.OptionID}, nil
	}
	return nil, errUnsupportedType(msg.Type)
}

type protocolError string

func (e protocolError) Error() string { return string(e) }

func errInvalidPayload(msgType string) error {
	return protocolError("invalid " + msgType + " payload")
}

func errUnsupportedType(msgType string) error {
	return protocolError("unsupported message type " + msgType)
}
