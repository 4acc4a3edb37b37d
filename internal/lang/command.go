package lang

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// CommandProvider speaks a newline-delimited JSON protocol to a language
// server subprocess: one request object per line on stdin, one response
// object per line on stdout, matched by id. Responses may arrive out of
// order; the pending map routes each to its waiting call.
type CommandProvider struct {
	mu      sync.Mutex
	enc     *json.Encoder
	nextID  uint64
	pending map[uint64]chan wireResponse
	err     error

	closeFn func() error
}

var _ Provider = (*CommandProvider)(nil)

type wirePosition struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

type wireEdit struct {
	Range   wireRange `json:"range"`
	NewText string    `json:"new_text"`
}

type wireItem struct {
	Label      string `json:"label"`
	Detail     string `json:"detail,omitempty"`
	InsertText string `json:"insert_text,omitempty"`
	FilterText string `json:"filter_text,omitempty"`
	Kind       int    `json:"kind,omitempty"`
}

type wireLocation struct {
	Path    string    `json:"path"`
	Range   wireRange `json:"range"`
	Snippet string    `json:"snippet,omitempty"`
}

type wireHover struct {
	Contents string     `json:"contents"`
	Range    *wireRange `json:"range,omitempty"`
}

type wireRequest struct {
	ID      uint64 `json:"id"`
	Op      string `json:"op"`
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	NewName string `json:"new_name,omitempty"`
}

type wireResponse struct {
	ID        uint64                `json:"id"`
	Error     string                `json:"error,omitempty"`
	Items     []wireItem            `json:"items,omitempty"`
	Locations []wireLocation        `json:"locations,omitempty"`
	Hover     *wireHover            `json:"hover,omitempty"`
	Edits     []wireEdit            `json:"edits,omitempty"`
	Workspace map[string][]wireEdit `json:"workspace,omitempty"`
}

// StartCommand launches the server command and connects a provider to its
// standard streams. The process exits when ctx is cancelled or Close is
// called.
func StartCommand(ctx context.Context, command []string) (*CommandProvider, error) {
	if len(command) == 0 {
		return nil, ErrNoProvider
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", command[0], err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", command[0], err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", command[0], err)
	}

	p := newCommandProvider(stdin, stdout)
	p.closeFn = func() error {
		stdin.Close()
		return cmd.Wait()
	}
	return p, nil
}

// newCommandProvider wires a provider over raw streams. Split from
// StartCommand so transports other than a subprocess can back it.
func newCommandProvider(w io.Writer, r io.Reader) *CommandProvider {
	p := &CommandProvider{
		enc:     json.NewEncoder(w),
		pending: make(map[uint64]chan wireResponse),
	}
	go p.read(r)
	return p
}

// Close terminates the transport. Pending calls fail with ErrNotReady.
func (p *CommandProvider) Close() error {
	p.fail(ErrNotReady)
	if p.closeFn != nil {
		return p.closeFn()
	}
	return nil
}

// read routes responses to their waiting calls until the stream ends.
func (p *CommandProvider) read(r io.Reader) {
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		var resp wireResponse
		if err := dec.Decode(&resp); err != nil {
			p.fail(err)
			return
		}

		p.mu.Lock()
		ch, ok := p.pending[resp.ID]
		delete(p.pending, resp.ID)
		p.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// fail wakes every waiting call and marks the provider dead. The first
// error wins.
func (p *CommandProvider) fail(err error) {
	if errors.Is(err, io.EOF) {
		err = ErrNotReady
	}
	p.mu.Lock()
	if p.err == nil {
		p.err = err
	}
	for id, ch := range p.pending {
		close(ch)
		delete(p.pending, id)
	}
	p.mu.Unlock()
}

// call sends one request and waits for its response or the context.
// Encoding happens under the lock so request lines stay whole.
func (p *CommandProvider) call(ctx context.Context, req wireRequest) (wireResponse, error) {
	ch := make(chan wireResponse, 1)

	p.mu.Lock()
	if p.err != nil {
		err := p.err
		p.mu.Unlock()
		return wireResponse{}, &RequestError{Op: req.Op, Err: err}
	}
	p.nextID++
	req.ID = p.nextID
	p.pending[req.ID] = ch
	err := p.enc.Encode(req)
	p.mu.Unlock()
	if err != nil {
		p.drop(req.ID)
		return wireResponse{}, &RequestError{Op: req.Op, Err: err}
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			p.mu.Lock()
			failed := p.err
			p.mu.Unlock()
			return wireResponse{}, &RequestError{Op: req.Op, Err: failed}
		}
		if resp.Error != "" {
			return wireResponse{}, &RequestError{Op: req.Op, Err: errors.New(resp.Error)}
		}
		return resp, nil
	case <-ctx.Done():
		p.drop(req.ID)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return wireResponse{}, &RequestError{Op: req.Op, Err: ErrTimeout}
		}
		return wireResponse{}, ctx.Err()
	}
}

// drop abandons a pending call.
func (p *CommandProvider) drop(id uint64) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

// Completion implements Provider.
func (p *CommandProvider) Completion(ctx context.Context, path string, pos Position) ([]CompletionItem, error) {
	resp, err := p.call(ctx, wireRequest{Op: "completion", Path: path, Line: pos.Line, Col: pos.Col})
	if err != nil {
		return nil, err
	}
	items := make([]CompletionItem, len(resp.Items))
	for i, it := range resp.Items {
		items[i] = CompletionItem{
			Label:      it.Label,
			Detail:     it.Detail,
			InsertText: it.InsertText,
			FilterText: it.FilterText,
			Kind:       ItemKind(it.Kind),
		}
	}
	return items, nil
}

// Hover implements Provider.
func (p *CommandProvider) Hover(ctx context.Context, path string, pos Position) (*Hover, error) {
	resp, err := p.call(ctx, wireRequest{Op: "hover", Path: path, Line: pos.Line, Col: pos.Col})
	if err != nil {
		return nil, err
	}
	if resp.Hover == nil {
		return nil, nil
	}
	h := &Hover{Contents: resp.Hover.Contents}
	if resp.Hover.Range != nil {
		r := resp.Hover.Range.toRange()
		h.Range = &r
	}
	return h, nil
}

// Definition implements Provider.
func (p *CommandProvider) Definition(ctx context.Context, path string, pos Position) ([]Location, error) {
	resp, err := p.call(ctx, wireRequest{Op: "definition", Path: path, Line: pos.Line, Col: pos.Col})
	if err != nil {
		return nil, err
	}
	return toLocations(resp.Locations), nil
}

// References implements Provider.
func (p *CommandProvider) References(ctx context.Context, path string, pos Position) ([]Location, error) {
	resp, err := p.call(ctx, wireRequest{Op: "references", Path: path, Line: pos.Line, Col: pos.Col})
	if err != nil {
		return nil, err
	}
	return toLocations(resp.Locations), nil
}

// Rename implements Provider.
func (p *CommandProvider) Rename(ctx context.Context, path string, pos Position, newName string) (WorkspaceEdit, error) {
	resp, err := p.call(ctx, wireRequest{Op: "rename", Path: path, Line: pos.Line, Col: pos.Col, NewName: newName})
	if err != nil {
		return nil, err
	}
	we := make(WorkspaceEdit, len(resp.Workspace))
	for file, edits := range resp.Workspace {
		we[file] = toTextEdits(edits)
	}
	return we, nil
}

// Formatting implements Provider.
func (p *CommandProvider) Formatting(ctx context.Context, path string) ([]TextEdit, error) {
	resp, err := p.call(ctx, wireRequest{Op: "formatting", Path: path})
	if err != nil {
		return nil, err
	}
	return toTextEdits(resp.Edits), nil
}

func (r wireRange) toRange() Range {
	return Range{
		Start: Position{Line: r.Start.Line, Col: r.Start.Col},
		End:   Position{Line: r.End.Line, Col: r.End.Col},
	}
}

func toTextEdits(edits []wireEdit) []TextEdit {
	out := make([]TextEdit, len(edits))
	for i, e := range edits {
		out[i] = TextEdit{Range: e.Range.toRange(), NewText: e.NewText}
	}
	return out
}

func toLocations(locs []wireLocation) []Location {
	out := make([]Location, len(locs))
	for i, l := range locs {
		out[i] = Location{Path: l.Path, Range: l.Range.toRange(), Snippet: l.Snippet}
	}
	return out
}
