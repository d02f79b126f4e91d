// objview displays a Wavefront OBJ mesh in an OpenGL window.
//
// Drag with the left mouse button to orbit, scroll to zoom,
// space toggles rotation, Z toggles Z-up orientation, F12 saves a
// screenshot, ESC quits.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-obj/internal/config"
	"github.com/Faultbox/midgard-obj/internal/engine/model"
	"github.com/Faultbox/midgard-obj/internal/logger"
	"github.com/Faultbox/midgard-obj/internal/viewer"
	"github.com/Faultbox/midgard-obj/pkg/formats"
)

func main() {
	config.ParseFlags()

	if len(config.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: objview [global options] <file.obj>")
		os.Exit(1)
	}
	path := config.Args()[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := cfg.Parser.Options()
	opts.Logger = logger.Named("obj")

	obj, err := formats.ParseOBJFile(path, opts)
	if err != nil {
		logger.Error("failed to load mesh", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}

	indexType, err := cfg.Buffer.ParseIndexType()
	if err != nil {
		logger.Error("invalid index type", zap.Error(err))
		os.Exit(1)
	}

	// The viewer shades whatever the file provides.
	mesh, err := model.BuildMesh(obj, model.BuildOptions{
		IndexType: indexType,
		CenterXZ:  cfg.Viewer.CenterXZ,
	})
	if err != nil {
		logger.Error("failed to build mesh", zap.Error(err))
		os.Exit(1)
	}

	v, err := viewer.New(cfg.Viewer, "objview - "+filepath.Base(path), mesh)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
}
