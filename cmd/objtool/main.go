// objtool is a CLI utility for inspecting Wavefront OBJ meshes and exporting GPU buffers.
package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-obj/internal/assets"
	"github.com/Faultbox/midgard-obj/internal/config"
	"github.com/Faultbox/midgard-obj/internal/logger"
	"github.com/Faultbox/midgard-obj/pkg/formats"
)

func main() {
	config.ParseFlags()
	args := config.Args()

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Sugar.Debugf("Config: %+v", cfg)

	command := args[0]
	args = args[1:]

	var code int
	switch command {
	case "info":
		code = cmdInfo(cfg, args)
	case "check":
		code = cmdCheck(cfg, args)
	case "buffers", "export":
		code = cmdBuffers(cfg, args)
	case "config":
		code = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		code = 1
	}

	logger.Sync()
	os.Exit(code)
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ mesh utility

Usage:
  objtool [global options] <command> [options]

Commands:
  info <file.obj>                 Show mesh information
  check <file.obj>...             Parse files concurrently and report errors
  buffers <file.obj> <prefix>     Write <prefix>.vbo and <prefix>.ibo
  config [path]                   Write the effective config (.yaml or .toml)

Global options:
  -config <path>        Config file
  -debug                Debug logging
  -log-file <path>      Rotating log file
  -normal-width <n>     Floats per normal (>= 3)
  -texcoord-width <n>   Floats per texture coordinate (>= 3)
  -layout <list>        Vertex layout, e.g. position,normal,texcoord
  -index-type <type>    auto, uint8, uint16, uint32
  -j <n>                Concurrent parses for check

Examples:
  objtool info bunny.obj
  objtool -j 8 check models/*.obj
  objtool -layout position,texcoord -index-type uint32 buffers crate.obj out/crate`)
}

func cmdInfo(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>")
		return 1
	}

	obj, err := formats.ParseOBJFile(args[0], parserOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	stats := obj.Stats()
	bounds := obj.Bounds()

	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Format:     %s\n", stats.Format)
	fmt.Printf("Positions:  %d\n", stats.Positions)
	fmt.Printf("Normals:    %d\n", stats.Normals)
	fmt.Printf("TexCoords:  %d\n", stats.TexCoords)
	fmt.Printf("Faces:      %d\n", stats.Faces)
	fmt.Printf("Vertices:   %d\n", stats.Vertices)
	fmt.Printf("Rebuilt:    %v\n", stats.Rebuilt)
	fmt.Printf("Index type: %s\n", formats.SelectIndexType(stats.Vertices))
	fmt.Printf("Bounds:     (%.4g, %.4g, %.4g) - (%.4g, %.4g, %.4g)\n",
		bounds.Min.X, bounds.Min.Y, bounds.Min.Z,
		bounds.Max.X, bounds.Max.Y, bounds.Max.Z)

	if len(obj.Skipped) > 0 {
		keywords := make([]string, 0, len(obj.Skipped))
		for k := range obj.Skipped {
			keywords = append(keywords, k)
		}
		sort.Strings(keywords)

		fmt.Println()
		fmt.Println("Ignored statements:")
		for _, k := range keywords {
			fmt.Printf("  %-10s %d\n", k, obj.Skipped[k])
		}
	}
	return 0
}

func cmdCheck(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	quiet := fs.Bool("q", false, "Only print failures")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool check [-q] <file.obj>...")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mgr := assets.NewManager(parserOptions(cfg), logger.Log)
	defer mgr.Close()

	results, err := mgr.LoadAll(ctx, fs.Args(), cfg.Cache.Workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("FAIL %s: %v\n", r.Path, r.Err)
			continue
		}
		if !*quiet {
			s := r.Mesh.Stats()
			fmt.Printf("ok   %s (%s, %d faces, %d vertices)\n", r.Path, s.Format, s.Faces, s.Vertices)
		}
	}

	hits, misses := mgr.Stats()
	logger.Debug("check finished",
		zap.Int("files", len(results)),
		zap.Int("failed", failed),
		zap.Int64("cacheHits", hits),
		zap.Int64("cacheMisses", misses),
	)

	if failed > 0 {
		fmt.Printf("\n%d of %d files failed\n", failed, len(results))
		return 1
	}
	return 0
}

func cmdBuffers(cfg *config.Config, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: objtool buffers <file.obj> <output-prefix>")
		return 1
	}

	layout, err := cfg.Buffer.ParseLayout()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	indexType, err := cfg.Buffer.ParseIndexType()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	obj, err := formats.ParseOBJFile(args[0], parserOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	vb, ib, err := obj.IndexedBuffer(layout, indexType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	prefix := args[1]
	if err := writeVertices(prefix+".vbo", vb.Data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := os.WriteFile(prefix+".ibo", ib.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing index buffer: %v\n", err)
		return 1
	}

	fmt.Printf("Vertices: %d x %d floats -> %s.vbo\n", vb.Count, vb.Stride, prefix)
	fmt.Printf("Indices:  %d x %s -> %s.ibo\n", len(ib.Indices), ib.Type, prefix)
	for i, attr := range vb.Layout {
		fmt.Printf("  %-9s offset %d, %d floats\n", attr, vb.Offsets[i], obj.AttributeWidth(attr))
	}
	return 0
}

func cmdConfig(cfg *config.Config, args []string) int {
	var err error
	if len(args) > 0 {
		err = cfg.SaveTo(args[0])
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parserOptions(cfg *config.Config) formats.OBJOptions {
	opts := cfg.Parser.Options()
	opts.Logger = logger.Named("obj")
	return opts
}

// writeVertices writes vertex data as little-endian float32.
func writeVertices(path string, data []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing vertex buffer: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		return fmt.Errorf("writing vertex buffer: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing vertex buffer: %w", err)
	}
	return f.Close()
}
