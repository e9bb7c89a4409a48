package tools

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToToolResult is the single place where an outcome becomes a tool result.
// Any error, whatever its kind, becomes an "Error: <message>" text flagged IsError.
func ToToolResult(text string, err error) *mcp.CallToolResult {
	if err != nil {
		return mcp.NewToolResultError("Error: " + err.Error())
	}
	return mcp.NewToolResultText(text)
}

// ResultText returns the first text block of a result.
func ResultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// prettyJSON indents with two spaces and leaves <, > and & unescaped.
func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// formatValue renders a capability value as it was written in the call: true, 50, 0.5, on, null.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(b)
}
