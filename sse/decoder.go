package sse

import (
	"bytes"
	"strings"
)

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"
)

// State is the decoder state carried between chunks. The zero value is a
// fresh decoder.
type State struct {
	partial []byte
	data    []string
	size    int
	done    bool
}

// Pending returns the number of raw bytes held by the state: the current
// unterminated block plus any partial line.
func (s State) Pending() int {
	return s.size + len(s.partial)
}

// Done reports whether a data: [DONE] line has been seen.
func (s State) Done() bool {
	return s.done
}

// Block is one blank-line terminated event. Data is the joined data: payload
// text and may be empty; Size is the raw byte length of every line of the
// block, terminators included.
type Block struct {
	Data string
	Size int
}

// Decode feeds chunk to the decoder and returns the new state together with
// the blocks completed by this chunk, in order. The input state is not
// modified.
func Decode(state State, chunk []byte) (State, []Block) {
	next := state.clone()
	var blocks []Block

	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			next.partial = append(next.partial, chunk...)
			break
		}

		line := chunk[:i]
		if len(next.partial) > 0 {
			next.partial = append(next.partial, line...)
			line = next.partial
		}
		next.size += len(line) + 1

		if block, ok := next.consumeLine(line); ok {
			blocks = append(blocks, block)
		}
		next.partial = next.partial[:0]
		chunk = chunk[i+1:]
	}

	return next, blocks
}

// Flush terminates the current block at end of input. The unterminated line,
// if any, is treated as complete. ok is false when the state held no bytes.
func Flush(state State) (State, Block, bool) {
	next := state.clone()

	if len(next.partial) > 0 {
		next.size += len(next.partial)
		block, ok := next.consumeLine(next.partial)
		next.partial = next.partial[:0]
		if ok {
			// a whitespace-only tail is a blank line that terminated the block
			return next, block, true
		}
	}
	if next.size == 0 {
		return next, Block{}, false
	}
	return next, next.takeBlock(), true
}

// consumeLine applies one complete line and reports a finished block when the
// line is blank.
func (s *State) consumeLine(raw []byte) (Block, bool) {
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return s.takeBlock(), true
	}

	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return Block{}, false
	}
	payload = strings.TrimSpace(payload)
	if payload == doneMarker {
		s.done = true
		return Block{}, false
	}
	s.data = append(s.data, payload)
	return Block{}, false
}

func (s *State) takeBlock() Block {
	block := Block{
		Data: strings.TrimSpace(strings.Join(s.data, "\n")),
		Size: s.size,
	}
	s.data = nil
	s.size = 0
	return block
}

func (s State) clone() State {
	return State{
		partial: bytes.Clone(s.partial),
		data:    append([]string(nil), s.data...),
		size:    s.size,
		done:    s.done,
	}
}
