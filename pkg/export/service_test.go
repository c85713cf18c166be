package export

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/thegrantai/hwpxgen/pkg/archive"
	"github.com/thegrantai/hwpxgen/pkg/content"
	"github.com/thegrantai/hwpxgen/pkg/template"
)

type stubFetcher struct {
	data []byte
	err  error
}

func (f stubFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func incompressible(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i*41 + i/13) % 247)
	}
	return data
}

func templateArchive(t *testing.T) []byte {
	t.Helper()
	parts := map[string][]byte{
		"mimetype":    []byte(archive.Mimetype),
		"version.xml": []byte(`<?xml version="1.0"?><version/>`),
		"Contents/header.xml": []byte(
			`<hh:head><hp:p><hp:run><hp:t>{{item_name}}</hp:t></hp:run></hp:p></hh:head>`),
		"Contents/section0.xml": []byte(
			`<hp:sec>` +
				`<hp:p><hp:linesegarray><hp:lineseg textpos="0"/></hp:linesegarray>` +
				`<hp:run><hp:t>{{item_name}}</hp:t></hp:run></hp:p>` +
				`<hp:p><hp:run><hp:t>{{prob_necessity}}</hp:t></hp:run></hp:p>` +
				`<hp:p><hp:run><hp:t>{{nonexistent_key}}</hp:t></hp:run></hp:p>` +
				`<hp:p><hp:run><hp:t>제조 지식서비스 융복합</hp:t></hp:run></hp:p>` +
				`</hp:sec>`),
		"Preview/PrvText.txt":   []byte("{{item_name}}"),
		"Preview/PrvImage.png":  incompressible(16 * 1024),
		"settings.xml":          []byte(`<settings/>`),
		"META-INF/manifest.xml": []byte(`<manifest/>`),
	}
	data, err := archive.Reassemble(parts, nil)
	if err != nil {
		t.Fatalf("building test template: %v", err)
	}
	return data
}

func sampleTree() *content.Tree {
	return &content.Tree{Nodes: []content.Node{
		{Type: content.NodeTable, Table: &content.Table{Rows: []content.Row{
			{Cells: []content.Cell{{Text: "명칭"}, {Text: "스마트 재활 보조기"}}},
			{Cells: []content.Cell{{Text: "범주"}, {Text: "바이오·의료"}}},
			{Cells: []content.Cell{{Text: "지원분야"}, {Text: "지식서비스"}}},
		}}},
		{Type: content.NodeHeading, Heading: &content.Heading{Level: 2, Text: "1-1. 문제 인식"}},
		{Type: content.NodeParagraph, Paragraph: &content.Paragraph{Text: "재활 기기가 비싸다"}},
	}}
}

func TestExport_EndToEnd(t *testing.T) {
	service := NewService(stubFetcher{data: templateArchive(t)}, nil, nil)

	result, err := service.Export(context.Background(), Request{
		Tree:     sampleTree(),
		Template: "early",
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	parts, err := archive.ReadParts(result.Data)
	if err != nil {
		t.Fatalf("reading exported archive: %v", err)
	}

	section := string(parts["Contents/section0.xml"])
	if !strings.Contains(section, "스마트 재활 보조기") {
		t.Errorf("item_name not injected into section: %q", section)
	}
	if !strings.Contains(section, "재활 기기가 비싸다") {
		t.Errorf("narrative not injected into section: %q", section)
	}
	if strings.Contains(section, "{{") {
		t.Errorf("placeholder residue in section: %q", section)
	}
	if strings.Contains(section, "linesegarray") {
		t.Errorf("stale layout cache in section: %q", section)
	}
	if !strings.Contains(section, "☑ 지식서비스") {
		t.Errorf("support field checkbox not selected: %q", section)
	}

	header := string(parts["Contents/header.xml"])
	if !strings.Contains(header, "스마트 재활 보조기") {
		t.Errorf("header part not injected: %q", header)
	}

	if string(parts["mimetype"]) != archive.Mimetype {
		t.Errorf("mimetype = %q", parts["mimetype"])
	}
	if !strings.Contains(string(parts["Preview/PrvText.txt"]), "스마트 재활 보조기") {
		t.Errorf("preview not regenerated: %q", parts["Preview/PrvText.txt"])
	}

	if result.ContentType != ContentType {
		t.Errorf("ContentType = %q", result.ContentType)
	}
	if result.FileName != "스마트 재활 보조기.hwpx" {
		t.Errorf("FileName = %q", result.FileName)
	}
}

func TestExport_DiagnosticsSurfaceUnresolved(t *testing.T) {
	service := NewService(stubFetcher{data: templateArchive(t)}, nil, nil)

	result, err := service.Export(context.Background(), Request{
		Tree:     sampleTree(),
		Template: "early",
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	d := result.Diagnostics
	if d.RequestID == "" {
		t.Error("diagnostics missing request id")
	}
	found := false
	for _, id := range d.Unresolved {
		if id == "nonexistent_key" {
			found = true
		}
	}
	if !found {
		t.Errorf("Unresolved = %v, want to contain nonexistent_key", d.Unresolved)
	}
	if d.ReplacedTokens == 0 {
		t.Error("ReplacedTokens should be positive")
	}
}

func TestExport_FetchFailureIsFatal(t *testing.T) {
	service := NewService(stubFetcher{err: template.ErrTemplateFetch}, nil, nil)

	_, err := service.Export(context.Background(), Request{Template: "early"})
	if !errors.Is(err, template.ErrTemplateFetch) {
		t.Errorf("err = %v, want ErrTemplateFetch", err)
	}
}

func TestExport_GarbageTemplateIsFatal(t *testing.T) {
	service := NewService(stubFetcher{data: []byte("not a zip")}, nil, nil)

	_, err := service.Export(context.Background(), Request{Template: "early"})
	if err == nil {
		t.Fatal("expected error for unreadable template")
	}
}

func TestExport_CancelledContext(t *testing.T) {
	service := NewService(stubFetcher{data: templateArchive(t)}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Export(ctx, Request{Tree: sampleTree(), Template: "early"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExport_FileNameOverride(t *testing.T) {
	service := NewService(stubFetcher{data: templateArchive(t)}, nil, nil)

	result, err := service.Export(context.Background(), Request{
		Tree:     sampleTree(),
		Template: "early",
		FileName: "내 사업계획서",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.FileName != "내 사업계획서.hwpx" {
		t.Errorf("FileName = %q", result.FileName)
	}
}

func TestInjectable(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Contents/section0.xml", true},
		{"Contents/header.xml", true},
		{"META-INF/manifest.xml", false},
		{"version.xml", false},
		{"settings.xml", false},
		{"Preview/PrvText.txt", false},
		{"Preview/PrvImage.png", false},
	}

	for _, tt := range tests {
		if got := injectable(tt.path); got != tt.want {
			t.Errorf("injectable(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
