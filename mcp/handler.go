package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foomo/olxexport/service"
	"github.com/foomo/olxexport/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const Version = "0.1.0"

type ConvertRequest struct {
	Cartridge string `json:"cartridge"` // The normalized cartridge as JSON
}

type ConvertResponse struct {
	XML         string          `json:"xml"` // The rendered course.xml
	Diagnostics []vo.Diagnostic `json:"diagnostics,omitempty"`
}

type PreviewRequest struct {
	HTML          string            `json:"html"`          // The HTML body to preview
	ResourceIndex map[string]string `json:"resourceIndex"` // Optional href to identifier index for wiki links
}

type PreviewResponse struct {
	Preview *vo.Preview `json:"preview"`
}

// NewServer creates a new MCP server with the convert and preview tools
func NewServer(logger *zap.Logger, serviceInstance service.Service) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := server.NewMCPServer(
		"Common Cartridge OLX Exporter",
		Version,
		server.WithToolCapabilities(false),
	)

	convertTool := mcp.NewTool("convert",
		mcp.WithDescription("Convert a normalized Common Cartridge into an OLX course.xml"),
		mcp.WithString("cartridge",
			mcp.Required(),
			mcp.Description("The normalized cartridge as JSON with title, org, outline, resources and resourceIndex"),
		),
	)
	s.AddTool(convertTool, mcp.NewTypedToolHandler(getConvertHandler(logger, serviceInstance)))

	previewTool := mcp.NewTool("preview",
		mcp.WithDescription("Rewrite the static and wiki links of an HTML body and render it as markdown"),
		mcp.WithString("html",
			mcp.Required(),
			mcp.Description("The HTML body of a cartridge page"),
		),
		mcp.WithObject("resourceIndex",
			mcp.Description("Map of resource hrefs to identifiers used to resolve wiki links"),
		),
	)
	s.AddTool(previewTool, mcp.NewTypedToolHandler(getPreviewHandler(serviceInstance)))

	return s
}

func getConvertHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ConvertRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ConvertRequest) (*mcp.CallToolResult, error) {
		if args.Cartridge == "" {
			return mcp.NewToolResultError("cartridge is required"), nil
		}
		if r, ok := httpRequestFromContext(ctx); ok {
			logger.Debug("convert called over http", zap.String("remoteAddr", r.RemoteAddr))
		}

		var cartridge vo.Cartridge
		if err := json.Unmarshal([]byte(args.Cartridge), &cartridge); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse cartridge: %v", err)), nil
		}

		conversion, err := serviceInstance.Convert(ctx, &cartridge)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to convert cartridge: %v", err)), nil
		}

		responseBytes, err := json.Marshal(ConvertResponse{
			XML:         conversion.XML,
			Diagnostics: conversion.Diagnostics,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}

		return mcp.NewToolResultText(string(responseBytes)), nil
	}
}

func getPreviewHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PreviewRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PreviewRequest) (*mcp.CallToolResult, error) {
		if args.HTML == "" {
			return mcp.NewToolResultError("html is required"), nil
		}

		preview, err := serviceInstance.Preview(ctx, args.HTML, vo.ResourceIndex(args.ResourceIndex))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to preview html: %v", err)), nil
		}

		responseBytes, err := json.Marshal(PreviewResponse{Preview: preview})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}

		return mcp.NewToolResultText(string(responseBytes)), nil
	}
}
