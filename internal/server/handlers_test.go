package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/BlinkZer0/Phys-MCP-sub002/internal/artifacts"
	"github.com/BlinkZer0/Phys-MCP-sub002/internal/protocol"
)

// stubCaller satisfies Caller with a canned function.
type stubCaller struct {
	fn func(ctx context.Context, method string, params interface{}) (json.RawMessage, error)

	lastMethod string
	lastParams interface{}
}

func (c *stubCaller) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	c.lastMethod = method
	c.lastParams = params
	return c.fn(ctx, method, params)
}

func callTool(t *testing.T, s *Server, name, args string) *protocol.Message {
	t.Helper()
	req := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"` + name + `","arguments":` + args + `}}`
	return s.Handle(context.Background(), mustParse(t, req))
}

// contentText unwraps the {"content":[{"type":"text","text":...}]} envelope.
func contentText(t *testing.T, resp *protocol.Message) string {
	t.Helper()
	if resp == nil {
		t.Fatal("no response")
	}
	if resp.Err != nil {
		t.Fatalf("tool call failed: %v", resp.Err)
	}
	var env struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(resp.Result, &env); err != nil {
		t.Fatalf("Failed to unmarshal envelope: %v", err)
	}
	if len(env.Content) != 1 || env.Content[0].Type != "text" {
		t.Fatalf("unexpected envelope shape: %s", resp.Result)
	}
	return env.Content[0].Text
}

func TestToolsCall_ForwardsToWorker(t *testing.T) {
	caller := &stubCaller{
		fn: func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
			return json.RawMessage(`{"latex":"2 x","str":"2*x"}`), nil
		},
	}
	s := newTestServer(Config{Worker: caller})

	resp := callTool(t, s, "cas_diff", `{"expr":"x**2","symbol":"x"}`)
	text := contentText(t, resp)

	if caller.lastMethod != "cas_diff" {
		t.Errorf("worker method: got %s, want cas_diff", caller.lastMethod)
	}
	raw, ok := caller.lastParams.(json.RawMessage)
	if !ok {
		t.Fatalf("worker params type: got %T, want json.RawMessage", caller.lastParams)
	}
	if !strings.Contains(string(raw), `"expr":"x**2"`) {
		t.Errorf("arguments not forwarded verbatim: %s", raw)
	}
	if !strings.Contains(text, "2*x") {
		t.Errorf("worker result not surfaced: %s", text)
	}
}

func TestToolsCall_QuantumOpsReachesWorker(t *testing.T) {
	caller := &stubCaller{
		fn: func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
			return json.RawMessage(`{"result":"[x, p] = i*hbar","task":"commutator"}`), nil
		},
	}
	s := newTestServer(Config{Worker: caller})

	resp := callTool(t, s, "quantum_ops", `{"operators":["x","p"],"task":"commutator"}`)
	text := contentText(t, resp)

	if caller.lastMethod != "quantum_ops" {
		t.Errorf("worker method: got %s, want quantum_ops", caller.lastMethod)
	}
	if !strings.Contains(text, "i*hbar") {
		t.Errorf("worker result not surfaced: %s", text)
	}
}

func TestToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(Config{Worker: &stubCaller{
		fn: func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
			t.Fatal("worker must not be consulted for unknown tools")
			return nil, nil
		},
	}})

	resp := callTool(t, s, "cas_summon_demon", `{}`)
	if resp == nil || resp.Err == nil {
		t.Fatal("expected an error response")
	}
	if resp.Err.Code != protocol.CodeToolFailed {
		t.Errorf("code: got %d, want %d", resp.Err.Code, protocol.CodeToolFailed)
	}
}

func TestToolsCall_NoWorkerConfigured(t *testing.T) {
	s := newTestServer(Config{})
	resp := callTool(t, s, "cas_evaluate", `{"expr":"1+1"}`)
	if resp == nil || resp.Err == nil {
		t.Fatal("expected an error response")
	}
	if resp.Err.Code != protocol.CodeWorkerUnavailable {
		t.Errorf("code: got %d, want %d", resp.Err.Code, protocol.CodeWorkerUnavailable)
	}
}

func TestToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(Config{})
	resp := s.Handle(context.Background(), mustParse(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":"not an object"}`))
	if resp == nil || resp.Err == nil {
		t.Fatal("expected an error response")
	}
	if resp.Err.Code != protocol.CodeInvalidParams {
		t.Errorf("code: got %d, want %d", resp.Err.Code, protocol.CodeInvalidParams)
	}
}

func TestToolsCall_WorkerErrorPreserved(t *testing.T) {
	s := newTestServer(Config{Worker: &stubCaller{
		fn: func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
			return nil, protocol.Errorf(protocol.CodeToolFailed, "singular matrix")
		},
	}})

	resp := callTool(t, s, "cas_solve_equation", `{"equation":"0=1","symbol":"x"}`)
	if resp == nil || resp.Err == nil {
		t.Fatal("expected an error response")
	}
	if resp.Err.Code != protocol.CodeToolFailed {
		t.Errorf("code: got %d, want %d", resp.Err.Code, protocol.CodeToolFailed)
	}
	if !strings.Contains(resp.Err.Message, "singular matrix") {
		t.Errorf("domain message lost: %s", resp.Err.Message)
	}
}

func encodeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestToolsCall_PlotResultAnnotated(t *testing.T) {
	pngB64 := encodeTestPNG(t, 120, 90)
	caller := &stubCaller{
		fn: func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
			result := map[string]string{
				"image_png_b64": pngB64,
				"csv_data":      "x,y\n0,0\n1,1\n",
			}
			return json.Marshal(result)
		},
	}
	store, err := artifacts.NewStore(t.TempDir(), 48, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s := newTestServer(Config{Worker: caller, Store: store})

	resp := callTool(t, s, "plot_function_2d", `{"f":"x","x_min":0,"x_max":1}`)
	text := contentText(t, resp)

	var result struct {
		Artifacts *artifacts.Saved `json:"artifacts"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("Failed to unmarshal annotated result: %v", err)
	}
	if result.Artifacts == nil {
		t.Fatalf("result not annotated: %s", text)
	}
	for _, path := range []string{result.Artifacts.PNG, result.Artifacts.ThumbnailPNG, result.Artifacts.PreviewPNG, result.Artifacts.CSV} {
		if path == "" {
			t.Fatalf("missing artifact path in %+v", result.Artifacts)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("artifact file %s: %v", path, err)
		}
	}
}

func TestToolsCall_NonPlotResultNotAnnotated(t *testing.T) {
	caller := &stubCaller{
		fn: func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
			return json.RawMessage(`{"value":42,"unit":"eV"}`), nil
		},
	}
	store, err := artifacts.NewStore(t.TempDir(), 48, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s := newTestServer(Config{Worker: caller, Store: store})

	text := contentText(t, callTool(t, s, "units_convert", `{"quantity":{"value":1,"unit":"J"},"to":"eV"}`))
	if strings.Contains(text, "artifacts") {
		t.Errorf("non-plot result was annotated: %s", text)
	}
}

func TestToolsCall_PlotStylePalette(t *testing.T) {
	// Local tool; must work with neither worker nor store configured.
	s := newTestServer(Config{})

	text := contentText(t, callTool(t, s, "plot_style_palette", `{"count":5}`))

	var result struct {
		Count  int      `json:"count"`
		Colors []string `json:"colors"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if result.Count != 5 || len(result.Colors) != 5 {
		t.Fatalf("palette shape: %+v", result)
	}
	for _, c := range result.Colors {
		if len(c) != 7 || c[0] != '#' {
			t.Errorf("not a hex color: %q", c)
		}
	}
}

func TestToolsCall_PlotStylePaletteRejectsBadCount(t *testing.T) {
	s := newTestServer(Config{})
	resp := callTool(t, s, "plot_style_palette", `{"count":0}`)
	if resp == nil || resp.Err == nil {
		t.Fatal("expected an error response")
	}
	if resp.Err.Code != protocol.CodeInvalidParams {
		t.Errorf("code: got %d, want %d", resp.Err.Code, protocol.CodeInvalidParams)
	}
}

func TestToolsCall_ArtifactThumbnail(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir, 48, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s := newTestServer(Config{Store: store})

	raw, err := base64.StdEncoding.DecodeString(encodeTestPNG(t, 200, 100))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	src := filepath.Join(dir, "plot.png")
	if err := os.WriteFile(src, raw, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	text := contentText(t, callTool(t, s, "artifact_thumbnail", `{"path":"`+src+`","width":32}`))

	var result struct {
		ThumbnailPNG string `json:"thumbnail_png"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if result.ThumbnailPNG == "" {
		t.Fatal("no thumbnail path returned")
	}
	if _, err := os.Stat(result.ThumbnailPNG); err != nil {
		t.Errorf("thumbnail file: %v", err)
	}
}

func TestToolsCall_ArtifactThumbnailRequiresPath(t *testing.T) {
	s := newTestServer(Config{})
	resp := callTool(t, s, "artifact_thumbnail", `{}`)
	if resp == nil || resp.Err == nil {
		t.Fatal("expected an error response")
	}
	if resp.Err.Code != protocol.CodeInvalidParams {
		t.Errorf("code: got %d, want %d", resp.Err.Code, protocol.CodeInvalidParams)
	}
}

func TestProducesArtifacts(t *testing.T) {
	for _, name := range []string{"plot_function_2d", "plot_surface_3d", "data_spectrogram", "quantum_visualize", "data_import_fits"} {
		if !producesArtifacts(name) {
			t.Errorf("%s should produce artifacts", name)
		}
	}
	for _, name := range []string{"cas_evaluate", "units_convert", "accel_caps"} {
		if producesArtifacts(name) {
			t.Errorf("%s should not produce artifacts", name)
		}
	}
}
