// Package mcpserver exposes the dotenv parser over the Model Context
// Protocol so agents can inspect env files without shelling out.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
	"github.com/IEvangelist/dotenv-aspire/internal/source"
)

func parseOptions(strict, noExpand, altComments bool) dotenv.Options {
	opts := dotenv.DefaultOptions()
	opts.Strict = strict
	opts.ExpandVariables = !noExpand
	opts.AlternativeComments = altComments
	return opts
}

func envPath(path string) string {
	if path == "" {
		return ".env"
	}
	return path
}

// Run serves the MCP tools over stdio until ctx is cancelled.
func Run(ctx context.Context) error {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "dotenv",
		Version: "0.1.0",
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "parse_env",
		Description: "Parse a .env file and return all key/value pairs. Keys with no value (KEY=) are reported under absent_keys instead of values. Set strict to get positional ENVxxx diagnostics for malformed lines.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Path        string `json:"path" jsonschema:"path to the .env file (default: .env)"`
		Strict      bool   `json:"strict" jsonschema:"fail on malformed lines instead of skipping them"`
		NoExpand    bool   `json:"no_expand" jsonschema:"disable ${VAR} expansion"`
		AltComments bool   `json:"alt_comments" jsonschema:"also treat ; and // as comment markers"`
	}) (*mcpsdk.CallToolResult, any, error) {
		m, err := source.Load(envPath(args.Path), parseOptions(args.Strict, args.NoExpand, args.AltComments))
		if err != nil {
			return toolError(err), nil, nil
		}
		values := make(map[string]string)
		var absent []string
		for _, e := range m.Entries() {
			if e.HasValue {
				values[e.Key] = e.Value
			} else {
				absent = append(absent, e.Key)
			}
		}
		return successResult(map[string]any{
			"values":      values,
			"absent_keys": absent,
			"path":        envPath(args.Path),
		}), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_value",
		Description: "Get a single value from a .env file. Lookup is case-insensitive. Distinguishes a key with an empty value from a key with no value at all.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Path string `json:"path" jsonschema:"path to the .env file (default: .env)"`
		Key  string `json:"key" jsonschema:"variable name (e.g. DATABASE_URL)"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Key == "" {
			return errorResult("key is required"), nil, nil
		}
		m, err := source.Load(envPath(args.Path), dotenv.DefaultOptions())
		if err != nil {
			return toolError(err), nil, nil
		}
		value, hasValue, ok := m.Lookup(args.Key)
		if !ok {
			return errorResult("key not found: " + args.Key), nil, nil
		}
		return successResult(map[string]any{
			"key":       args.Key,
			"value":     value,
			"has_value": hasValue,
		}), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_keys",
		Description: "List key names from a .env file in file order without returning any values.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Path string `json:"path" jsonschema:"path to the .env file (default: .env)"`
	}) (*mcpsdk.CallToolResult, any, error) {
		m, err := source.Load(envPath(args.Path), dotenv.DefaultOptions())
		if err != nil {
			return toolError(err), nil, nil
		}
		return successResult(map[string]any{
			"keys": m.Keys(),
			"path": envPath(args.Path),
		}), nil, nil
	})

	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

// toolError keeps parse diagnostics structured so agents can read the
// stable code and line number.
func toolError(err error) *mcpsdk.CallToolResult {
	var perr *dotenv.ParseError
	if errors.As(err, &perr) {
		r := successResult(map[string]any{
			"code":    perr.Code,
			"line":    perr.Line,
			"message": perr.Message,
		})
		r.IsError = true
		return r
	}
	return errorResult(err.Error())
}

func successResult(data any) *mcpsdk.CallToolResult {
	b, _ := json.Marshal(data)
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(b)}},
	}
}

func errorResult(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "error: " + msg}},
		IsError: true,
	}
}
