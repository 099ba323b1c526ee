package pipeline

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hublun/MDConverter/core"
)

// RegisterMCP registers the converter tools on an MCP server, exposing
// the pipeline operations to AI-assistant clients.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	type convertArgs struct {
		Path   string `json:"path" jsonschema:"path to the HTML file to convert"`
		Output string `json:"output,omitempty" jsonschema:"optional explicit output path"`
	}
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "convert",
		Description: "Convert a saved HTML page (plus its asset directory) to Markdown.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in convertArgs) (*mcp.CallToolResult, *core.Result, error) {
		res, err := p.ConvertFile(ctx, in.Path, in.Output)
		return nil, res, err
	})

	type contentArgs struct {
		HTML string `json:"html" jsonschema:"raw HTML text to convert"`
		Name string `json:"name,omitempty" jsonschema:"optional document name used for the title fallback"`
	}
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "convert_content",
		Description: "Convert raw HTML text to Markdown without writing any file.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in contentArgs) (*mcp.CallToolResult, *core.Result, error) {
		res, err := p.ConvertHTML(ctx, in.HTML, in.Name)
		return nil, res, err
	})

	type pathArgs struct {
		Path string `json:"path" jsonschema:"path to the HTML file"`
	}
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "extract_metadata",
		Description: "Extract title, author, publish date, and related metadata from an HTML file.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in pathArgs) (*mcp.CallToolResult, core.Metadata, error) {
		m, err := p.ExtractMetadata(ctx, in.Path)
		return nil, m, err
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "validate",
		Description: "Check that an HTML file is convertible and report how its assets resolve, without writing output.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in pathArgs) (*mcp.CallToolResult, *ValidationReport, error) {
		report, err := p.Validate(ctx, in.Path)
		return nil, report, err
	})

	type formatsOut struct {
		Formats []string `json:"formats"`
	}
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "formats",
		Description: "List the supported output formats.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, formatsOut, error) {
		return nil, formatsOut{Formats: core.SupportedFormats()}, nil
	})
}

// ServeMCP runs an MCP server over stdio until the context is done or
// the client disconnects.
func (p *Pipeline) ServeMCP(ctx context.Context, name, version string) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	p.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}
