package mininet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// DefaultPrompt is the Mininet CLI prompt.
const DefaultPrompt = "mininet>"

var errClosed = errors.New("console closed")

// Console runs one CLI command at a time and returns its output.
type Console interface {
	Exec(ctx context.Context, command string) (string, error)
	Close() error
}

// session drives a line-oriented CLI over a reader/writer pair: write a
// command, then read until the prompt reappears. Output returned to the
// caller excludes the trailing prompt.
type session struct {
	w      io.Writer
	prompt []byte

	mu      sync.Mutex
	chunks  chan []byte
	readErr error
	buf     bytes.Buffer
	pending int // prompts still owed by commands that timed out

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(r io.Reader, w io.Writer, prompt string) *session {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	s := &session{
		w:      w,
		prompt: []byte(prompt),
		chunks: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	go s.readLoop(r)
	return s
}

func (s *session) readLoop(r io.Reader) {
	b := make([]byte, 4096)
	for {
		n, err := r.Read(b)
		if n > 0 {
			c := make([]byte, n)
			copy(c, b[:n])
			select {
			case s.chunks <- c:
			case <-s.done:
				return
			}
		}
		if err != nil {
			s.readErr = err
			close(s.chunks)
			return
		}
	}
}

// waitPrompt consumes output until the buffer ends with the prompt and
// returns everything before it.
func (s *session) waitPrompt(ctx context.Context) (string, error) {
	for {
		if out, ok := s.cutPrompt(); ok {
			return out, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for %q: %w", s.prompt, ctx.Err())
		case <-s.done:
			return s.buf.String(), errClosed
		case c, ok := <-s.chunks:
			if !ok {
				err := s.readErr
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				return s.buf.String(), fmt.Errorf("console closed: %w", err)
			}
			s.buf.Write(c)
		}
	}
}

// shutdown releases the read loop and fails any waiting Exec. Safe to call
// more than once.
func (s *session) shutdown() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *session) cutPrompt() (string, bool) {
	data := bytes.TrimRight(s.buf.Bytes(), " \r\n")
	if !bytes.HasSuffix(data, s.prompt) {
		return "", false
	}
	out := string(data[:len(data)-len(s.prompt)])
	s.buf.Reset()
	return out, true
}

// start waits for the first prompt after the CLI is launched.
func (s *session) start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.waitPrompt(ctx)
	return err
}

func (s *session) Exec(ctx context.Context, command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.pending > 0 {
		if _, err := s.waitPrompt(ctx); err != nil {
			return "", fmt.Errorf("resynchronizing console: %w", err)
		}
		s.pending--
	}

	if _, err := io.WriteString(s.w, command+"\n"); err != nil {
		return "", fmt.Errorf("sending %q: %w", command, err)
	}
	out, err := s.waitPrompt(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.pending++
		}
		return out, err
	}
	return out, nil
}
