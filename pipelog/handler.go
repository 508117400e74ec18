package pipelog

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler delivers a message that passed all filters to one destination.
type Handler interface {
	Handle(text string) error
}

// ConsoleHandler writes messages, one per line, to a writer.
type ConsoleHandler struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleHandler writes to w, defaulting to os.Stdout when w is nil.
func NewConsoleHandler(w io.Writer) *ConsoleHandler {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleHandler{w: w}
}

func (h *ConsoleHandler) Handle(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, text)
	return err
}

// FileHandler appends messages to a file, opening and closing it per message
// so the file is never held open between deliveries.
type FileHandler struct {
	mu   sync.Mutex
	path string
}

func NewFileHandler(path string) *FileHandler {
	return &FileHandler{path: path}
}

func (h *FileHandler) Handle(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintln(f, text)
	return err
}

// TCPHandler sends each message over a fresh TCP connection.
type TCPHandler struct {
	addr    string
	timeout time.Duration
}

func NewTCPHandler(addr string) *TCPHandler {
	return &TCPHandler{addr: addr, timeout: 5 * time.Second}
}

func (h *TCPHandler) Handle(text string) error {
	conn, err := net.DialTimeout("tcp", h.addr, h.timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(text))
	return err
}

// ZapHandler bridges the pipeline into a zap logger.
type ZapHandler struct {
	logger *zap.Logger
}

func NewZapHandler(logger *zap.Logger) *ZapHandler {
	return &ZapHandler{logger: logger}
}

func (h *ZapHandler) Handle(text string) error {
	h.logger.Info(text)
	return nil
}
