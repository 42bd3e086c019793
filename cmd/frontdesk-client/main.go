// frontdesk-client is an interactive text client for exercising the agent
// over WebSocket: each stdin line is sent as a final transcript.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"frontdesk/messages"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

func main() {
	url := "ws://localhost:8080/ws"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", url, err)
	}
	defer conn.Close()

	done := make(chan struct{})

	// Print everything the agent sends
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg messages.ServerMessage
			if err := sonic.Unmarshal(raw, &msg); err != nil {
				log.Printf("⚠️ Unparseable message: %s", raw)
				continue
			}

			payload, _ := sonic.Marshal(msg.Payload)
			switch msg.Type {
			case messages.TypeSay:
				var say messages.SayPayload
				if err := sonic.Unmarshal(payload, &say); err == nil {
					fmt.Printf("🤖 %s\n", say.Text)
				}
			case messages.TypeStatus:
				var status messages.StatusPayload
				if err := sonic.Unmarshal(payload, &status); err == nil {
					log.Printf("ℹ️ %s %s", status.Status, status.Message)
					if status.Status == "closed" {
						return
					}
				}
			case messages.TypeError:
				var e messages.ErrorPayload
				if err := sonic.Unmarshal(payload, &e); err == nil {
					log.Printf("❌ %s: %s", e.Code, e.Message)
				}
			}
		}
	}()

	fmt.Println("Connected. Type to talk, Ctrl-D to hang up.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-done:
			return
		default:
		}

		text := scanner.Text()
		if text == "" {
			continue
		}
		payload, err := sonic.Marshal(messages.TranscriptPayload{Text: text, IsFinal: true})
		if err != nil {
			log.Fatalf("Failed to encode transcript: %v", err)
		}
		msg := map[string]any{"type": "transcript", "payload": json.RawMessage(payload)}
		if err := conn.WriteJSON(msg); err != nil {
			log.Fatalf("Failed to send: %v", err)
		}
	}

	// EOF on stdin ends the call cleanly
	endPayload, _ := sonic.Marshal(messages.ControlPayload{Action: "end_call"})
	_ = conn.WriteJSON(map[string]any{"type": "control", "payload": json.RawMessage(endPayload)})
	<-done
}
