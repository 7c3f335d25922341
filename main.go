package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/foomo/contentserver/requests"
	"github.com/foomo/olxexport/config"
	"github.com/foomo/olxexport/linkmap"
	"github.com/foomo/olxexport/logging"
	"github.com/foomo/olxexport/mcp"
	"github.com/foomo/olxexport/olx"
	"github.com/foomo/olxexport/service"
	"github.com/foomo/olxexport/service/vo"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	// Define command line flags
	configFile := flag.String("config", "", "Path to a YAML config file")
	inputFile := flag.String("input", "", "Path to a cartridge JSON file, '-' for stdin")
	outputFile := flag.String("output", "", "Path of the course.xml to write, stdout when empty")
	linkMapFile := flag.String("link-map", "", "Path to a CSV mapping iframe video links to edX ids")
	contentServerRoot := flag.String("contentserver-root", "", "Read the cartridge from the contentserver node with this id")
	stdioMode := flag.Bool("stdio", false, "Run the MCP server in stdio mode")
	httpAddr := flag.String("http", "", "HTTP server address (e.g., ':8080')")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatal(err)
		}
	}
	if *linkMapFile != "" {
		cfg.LinkMapFile = *linkMapFile
	}
	if *httpAddr != "" {
		cfg.Server.HTTPAddr = *httpAddr
	}

	logger, err := logging.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	var options []olx.Option
	if cfg.LinkMapFile != "" {
		parser, err := linkmap.Load(cfg.LinkMapFile, logger)
		if err != nil {
			logger.Fatal("failed to load link map", zap.Error(err))
		}
		options = append(options, olx.WithIframeVideoParser(parser))
	}
	serviceInstance := service.NewService(logger, service.Settings{Course: cfg.Course}, options...)

	ctx := context.Background()

	switch {
	case *inputFile != "" || *contentServerRoot != "":
		var cartridge *vo.Cartridge
		if *contentServerRoot != "" {
			cartridge, err = loadContentServerCartridge(ctx, cfg, *contentServerRoot)
		} else {
			cartridge, err = loadCartridgeFile(*inputFile)
		}
		if err != nil {
			logger.Fatal("failed to load cartridge", zap.Error(err))
		}
		if err := convert(ctx, logger, serviceInstance, cartridge, *outputFile); err != nil {
			logger.Fatal("failed to convert cartridge", zap.Error(err))
		}
	case cfg.Server.HTTPAddr != "":
		s := mcp.NewServer(logger, serviceInstance)
		logger.Info("starting HTTP server",
			zap.String("addr", cfg.Server.HTTPAddr),
			zap.String("endpoint", cfg.Server.Endpoint),
		)
		router := mcp.NewRouter(logger, s, serviceInstance, cfg.Server.Endpoint)
		if err := http.ListenAndServe(cfg.Server.HTTPAddr, router); err != nil {
			logger.Fatal("http server stopped", zap.Error(err))
		}
	case *stdioMode:
		logger.Info("starting MCP server in stdio mode")
		if err := server.ServeStdio(mcp.NewServer(logger, serviceInstance)); err != nil {
			logger.Fatal("stdio server stopped", zap.Error(err))
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func loadCartridgeFile(path string) (*vo.Cartridge, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	cartridge := &vo.Cartridge{}
	if err := json.NewDecoder(r).Decode(cartridge); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cartridge, nil
}

func loadContentServerCartridge(ctx context.Context, cfg config.Config, rootID string) (*vo.Cartridge, error) {
	if cfg.ContentServer.URL == "" {
		return nil, fmt.Errorf("contentServer.url is not configured")
	}
	source := service.NewContentServerSource(service.ContentServerSettings{
		URL: cfg.ContentServer.URL,
		Env: &requests.Env{
			Dimensions: cfg.ContentServer.Dimensions,
			Groups:     cfg.ContentServer.Groups,
		},
		MimeTypes:          cfg.ContentServer.MimeTypes,
		ContainerMimeTypes: cfg.ContentServer.ContainerMimeTypes,
	}, nil)
	return source.Cartridge(ctx, rootID)
}

func convert(ctx context.Context, logger *zap.Logger, serviceInstance service.Service, cartridge *vo.Cartridge, path string) error {
	conversion, err := serviceInstance.Convert(ctx, cartridge)
	if err != nil {
		return err
	}

	if path == "" {
		_, err = io.WriteString(os.Stdout, conversion.XML)
		return err
	}
	if err := os.WriteFile(path, []byte(conversion.XML), 0o644); err != nil {
		return err
	}
	logger.Info("wrote course",
		zap.String("path", path),
		zap.String("size", humanize.Bytes(uint64(len(conversion.XML)))),
		zap.Int("diagnostics", len(conversion.Diagnostics)),
	)
	return nil
}
