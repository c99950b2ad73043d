/*
Package types provides the shared value types for a chat request and
response: Message, ToolSchema/ToolResult, and request-ID context
propagation. It has zero internal dependencies so every other package can
depend on it without risking an import cycle.
*/
package types
