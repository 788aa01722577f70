package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/JackWithOneEye/hilbertchart/cmd/web"
	"github.com/JackWithOneEye/hilbertchart/internal/database"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/websocket"
)

type wsMessage struct {
	Conn *websocket.Conn
	Data []byte
	Err  error
}

type connectionResult struct {
	Conn      *websocket.Conn
	Connected bool
	Err       error
	Globals   web.Globals
}

type datasetsResult struct {
	Datasets []database.Summary
	Err      error
}

func connectToAPI(host, dataset string) tea.Cmd {
	return func() tea.Msg {
		var g web.Globals
		err := getJSON(host, "/globals", url.Values{"dataset": {dataset}}, &g)
		if err != nil {
			return connectionResult{Err: fmt.Errorf("could not get globals: %s", err)}
		}

		u := url.URL{Scheme: "ws", Host: host, Path: "/datasets/" + url.PathEscape(dataset) + "/live"}
		conn, _, err := websocket.Dial(context.Background(), u.String(), nil)
		if err != nil {
			return connectionResult{Globals: g, Err: fmt.Errorf("websocket connection failed: %s", err)}
		}
		conn.SetReadLimit(33554432) // 2^25

		return connectionResult{Conn: conn, Connected: true, Globals: g}
	}
}

func listenForMessages(conn *websocket.Conn) tea.Cmd {
	return func() tea.Msg {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return wsMessage{Conn: conn, Err: err}
		}
		return wsMessage{Conn: conn, Data: data}
	}
}

func sendMessage(conn *websocket.Conn, msg protocol.ClientMessage) tea.Cmd {
	return func() tea.Msg {
		err := conn.Write(context.Background(), websocket.MessageBinary, msg.Encode())
		if err != nil {
			log.Printf("Error sending message: %v", err)
		}
		return nil
	}
}

func listDatasets(host string) tea.Cmd {
	return func() tea.Msg {
		var list []database.Summary
		err := getJSON(host, "/datasets", nil, &list)
		return datasetsResult{Datasets: list, Err: err}
	}
}

func processServerMessage(data []byte) (protocol.Output, error) {
	var output protocol.Output
	err := output.Decode(data)
	if err != nil {
		return output, fmt.Errorf("failed to decode server message: %w", err)
	}
	return output, nil
}

func getJSON(host, path string, query url.Values, v any) error {
	u := url.URL{Scheme: "http", Host: host, Path: path, RawQuery: query.Encode()}
	resp, err := http.DefaultClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
