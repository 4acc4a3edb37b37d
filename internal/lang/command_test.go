package lang

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"
)

// servePipe backs a CommandProvider with an in-process responder. handle
// returns nil to simulate the server dying mid-request.
func servePipe(t *testing.T, handle func(wireRequest) *wireResponse) *CommandProvider {
	t.Helper()

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	p := newCommandProvider(reqW, respR)

	go func() {
		dec := json.NewDecoder(reqR)
		enc := json.NewEncoder(respW)
		for {
			var req wireRequest
			if err := dec.Decode(&req); err != nil {
				respW.Close()
				return
			}
			resp := handle(req)
			if resp == nil {
				respW.Close()
				return
			}
			resp.ID = req.ID
			enc.Encode(resp)
		}
	}()

	t.Cleanup(func() { reqW.Close() })
	return p
}

func TestCommandProviderCompletion(t *testing.T) {
	p := servePipe(t, func(req wireRequest) *wireResponse {
		if req.Op != "completion" || req.Path != "main.go" || req.Line != 3 || req.Col != 8 {
			t.Errorf("request = %+v", req)
		}
		return &wireResponse{Items: []wireItem{
			{Label: "Println", Detail: "func(a ...any)", InsertText: "Println(", Kind: int(ItemKindFunction)},
			{Label: "Printf"},
		}}
	})

	items, err := p.Completion(context.Background(), "main.go", Position{Line: 3, Col: 8})
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	want := CompletionItem{Label: "Println", Detail: "func(a ...any)", InsertText: "Println(", Kind: ItemKindFunction}
	if items[0] != want {
		t.Errorf("item = %+v, want %+v", items[0], want)
	}
}

func TestCommandProviderDefinitionAndHover(t *testing.T) {
	p := servePipe(t, func(req wireRequest) *wireResponse {
		switch req.Op {
		case "definition":
			return &wireResponse{Locations: []wireLocation{
				{Path: "util.go", Range: wireRange{Start: wirePosition{Line: 9, Col: 5}}, Snippet: "func helper() {"},
			}}
		case "hover":
			return &wireResponse{Hover: &wireHover{
				Contents: "helper does things",
				Range:    &wireRange{Start: wirePosition{Line: 1, Col: 2}, End: wirePosition{Line: 1, Col: 8}},
			}}
		default:
			return &wireResponse{Error: "unexpected op " + req.Op}
		}
	})

	locs, err := p.Definition(context.Background(), "main.go", Position{})
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}
	if len(locs) != 1 || locs[0].Path != "util.go" || locs[0].Range.Start.Line != 9 {
		t.Errorf("locations = %+v", locs)
	}

	h, err := p.Hover(context.Background(), "main.go", Position{})
	if err != nil {
		t.Fatalf("Hover failed: %v", err)
	}
	if h.Contents != "helper does things" {
		t.Errorf("hover contents = %q", h.Contents)
	}
	if h.Range == nil || h.Range.End.Col != 8 {
		t.Errorf("hover range = %+v", h.Range)
	}
}

func TestCommandProviderRenameAndFormatting(t *testing.T) {
	p := servePipe(t, func(req wireRequest) *wireResponse {
		switch req.Op {
		case "rename":
			if req.NewName != "count" {
				t.Errorf("new name = %q", req.NewName)
			}
			return &wireResponse{Workspace: map[string][]wireEdit{
				"main.go": {{Range: wireRange{Start: wirePosition{Line: 2, Col: 4}, End: wirePosition{Line: 2, Col: 5}}, NewText: "count"}},
			}}
		case "formatting":
			return &wireResponse{Edits: []wireEdit{
				{Range: wireRange{}, NewText: "\t"},
			}}
		default:
			return &wireResponse{Error: "unexpected op " + req.Op}
		}
	})

	we, err := p.Rename(context.Background(), "main.go", Position{Line: 2, Col: 4}, "count")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if len(we["main.go"]) != 1 || we["main.go"][0].NewText != "count" {
		t.Errorf("workspace edit = %+v", we)
	}

	edits, err := p.Formatting(context.Background(), "main.go")
	if err != nil {
		t.Fatalf("Formatting failed: %v", err)
	}
	if len(edits) != 1 || edits[0].NewText != "\t" {
		t.Errorf("edits = %+v", edits)
	}
}

func TestCommandProviderServerError(t *testing.T) {
	p := servePipe(t, func(wireRequest) *wireResponse {
		return &wireResponse{Error: "symbol not found"}
	})

	_, err := p.Definition(context.Background(), "main.go", Position{})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want RequestError", err)
	}
	if reqErr.Op != "definition" {
		t.Errorf("op = %q", reqErr.Op)
	}
}

func TestCommandProviderTimeout(t *testing.T) {
	p := servePipe(t, func(wireRequest) *wireResponse {
		time.Sleep(500 * time.Millisecond)
		return &wireResponse{}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Completion(ctx, "main.go", Position{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
}

func TestCommandProviderStreamEndFailsCalls(t *testing.T) {
	p := servePipe(t, func(wireRequest) *wireResponse {
		return nil
	})

	_, err := p.Completion(context.Background(), "main.go", Position{})
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("error = %v, want ErrNotReady", err)
	}

	// Later calls fail fast without touching the dead stream.
	_, err = p.Hover(context.Background(), "main.go", Position{})
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("error after death = %v, want ErrNotReady", err)
	}
}
