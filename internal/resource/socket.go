package resource

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// SocketFile is a File value backed by a websocket connection, giving
// calc's blocking-I/O File kind (spec.md §5: "(a) blocking I/O through
// the File value type") a second concrete backend alongside DBFile.
// Grounded on the teacher's internal/network/websocket.go WebSocketConn,
// trimmed to the blocking line-read/line-write shape a File value needs.
type SocketFile struct {
	url  string
	conn *websocket.Conn
}

// OpenSocket dials a websocket endpoint (`ws://` or `wss://`).
func OpenSocket(url string) (*SocketFile, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("resource: websocket dial failed: %w", err)
	}
	return &SocketFile{url: url, conn: conn}, nil
}

func (s *SocketFile) Close() error { return s.conn.Close() }

func (s *SocketFile) Describe() string { return fmt.Sprintf("socket %s", s.url) }

// ReadLine blocks for the next text message, matching fgetline's
// contract in spec.md §3's File operation list.
func (s *SocketFile) ReadLine() (string, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteLine sends one text message.
func (s *SocketFile) WriteLine(line string) error {
	return s.conn.WriteMessage(websocket.TextMessage, []byte(line))
}
