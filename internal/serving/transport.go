package serving

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// StdioTransport reads newline-framed Messages from an input stream
// and writes responses to an output stream, one line per Message.
// Grounded on the teacher's stdio_transport.go scan/dispatch/write
// loop, generalized from a bare bufio.Scanner default size to a
// bounded buffer sized for Genome-shaped payloads.
type StdioTransport struct {
	scanner *bufio.Scanner
	out     io.Writer
	handler *Handler
}

const maxLineBytes = 16 * 1024 * 1024

// NewStdioTransport wires handler to in/out.
func NewStdioTransport(in io.Reader, out io.Writer, handler *Handler) *StdioTransport {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &StdioTransport{scanner: scanner, out: out, handler: handler}
}

// Serve reads and dispatches Messages until the input stream closes or
// ctx is cancelled, returning the scanner's terminal error, if any.
func (t *StdioTransport) Serve(ctx context.Context) error {
	for t.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := t.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Message
		if err := json.Unmarshal(line, &req); err != nil {
			t.writeLine(Message{Kind: KindError, Payload: mustJSON(map[string]string{"message": "malformed request: " + err.Error()})})
			continue
		}

		resp := t.handler.Handle(ctx, req)
		t.writeLine(resp)
	}
	return t.scanner.Err()
}

func (t *StdioTransport) writeLine(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	fmt.Fprintln(t.out, string(data))
}

func mustJSON(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
