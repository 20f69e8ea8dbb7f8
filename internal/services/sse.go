package services

import (
	"bufio"
	"io"
	"strings"
)

// sseEvent is one dispatched server-sent event.
type sseEvent struct {
	Type string // "message" unless an event field named it
	Data string // data lines joined with "\n"
	ID   string
}

// eventReader decodes a text/event-stream body the way a browser EventSource does.
type eventReader struct {
	r       *bufio.Reader
	started bool
	lastID  string
	skipLF  bool // the previous line ended with a bare \r, so a following \n belongs to it
}

func newEventReader(r io.Reader) *eventReader {
	return &eventReader{r: bufio.NewReader(r)}
}

// Next blocks until a complete event is dispatched or the body ends.
//
// An event still being assembled when the body ends is discarded.
func (er *eventReader) Next() (sseEvent, error) {
	var (
		eventType string
		data      strings.Builder
		hasData   bool
	)

	for {
		line, err := er.readLine()
		if err != nil {
			// incomplete final line or clean EOF
			return sseEvent{}, err
		}

		if !er.started {
			line = strings.TrimPrefix(line, "\uFEFF")
			er.started = true
		}

		if line == "" {
			if !hasData {
				eventType = ""
				continue
			}
			if eventType == "" {
				eventType = "message"
			}
			payload := strings.TrimSuffix(data.String(), "\n")
			return sseEvent{Type: eventType, Data: payload, ID: er.lastID}, nil
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}

		switch field {
		case "event":
			eventType = value
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				er.lastID = value
			}
		}
	}
}

// readLine returns the next line without its terminator. Lines end with "\r\n", "\n" or a bare "\r".
//
// A "\r" is returned as soon as it is read; the "\n" that may follow is consumed by the next call,
// so a line never waits on bytes the server has not sent yet.
func (er *eventReader) readLine() (string, error) {
	var line strings.Builder
	for {
		b, err := er.r.ReadByte()
		if err != nil {
			return "", err
		}

		if er.skipLF {
			er.skipLF = false
			if b == '\n' {
				continue
			}
		}

		switch b {
		case '\n':
			return line.String(), nil
		case '\r':
			er.skipLF = true
			return line.String(), nil
		default:
			line.WriteByte(b)
		}
	}
}
