// Command voxelkit loads a block area from a generator, lights it, meshes it
// and writes the result as binary glTF.
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voxelkit/internal/config"
	"voxelkit/internal/debugview"
	"voxelkit/internal/export"
	"voxelkit/internal/lighting"
	"voxelkit/internal/meshing"
	"voxelkit/internal/profiling"
	"voxelkit/internal/provider"
	"voxelkit/internal/registry"
	"voxelkit/internal/world"
	"voxelkit/pkg/voxeldef"
)

//go:embed default_voxels.yaml
var defaultVoxels []byte

func main() {
	configPath := flag.String("config", "", "bake config (YAML); defaults to a small flat scene")
	libraryPath := flag.String("library", "", "voxel definitions, overrides the config")
	outPath := flag.String("out", "", "output .glb, overrides the config")
	metricsAddr := flag.String("metrics", "", "serve section timings on this address after the bake, e.g. :9100")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if *libraryPath != "" {
		cfg.Library = *libraryPath
	}
	if *outPath != "" {
		cfg.Output.GLB = *outPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := bake(ctx, cfg); err != nil {
		log.Fatalf("bake: %v", err)
	}
	log.Printf("Bake finished in %v. Top sections: %s", time.Since(start).Round(time.Millisecond), profiling.TopN(5))

	if *metricsAddr != "" {
		serveMetrics(ctx, *metricsAddr)
	}
}

func loadLibrary(path string) (*registry.Library, error) {
	if path == "" {
		return voxeldef.Parse(defaultVoxels)
	}
	return voxeldef.Load(path)
}

func bake(ctx context.Context, cfg *config.Config) error {
	lib, err := loadLibrary(cfg.Library)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d voxel types", lib.Len())

	gen, err := cfg.Generator.NewProvider()
	if err != nil {
		return err
	}

	store := world.NewBlockStore()
	min, max := cfg.Area.Bounds()
	var loaded int
	if cfg.Area.Radius > 0 {
		loaded = provider.LoadAround(store, gen, cfg.Area.CenterBlock(), cfg.Area.Radius, cfg.Channels.Type)
	} else {
		loaded = provider.LoadArea(store, gen, min, max, cfg.Channels.Type)
	}
	log.Printf("Loaded %d blocks in %v..%v (%s generator)", loaded, min, max, cfg.Generator.Mode)

	if cfg.Lighting.Enabled {
		if _, err := light(lib, store, cfg); err != nil {
			return err
		}
	}

	meshes, err := remesh(ctx, lib, store, cfg, min, max)
	if err != nil {
		return err
	}

	if cfg.Output.GLB != "" {
		if err := export.WriteGLB(cfg.Output.GLB, meshes); err != nil {
			return err
		}
		log.Printf("Wrote %d block meshes to %s", len(meshes), cfg.Output.GLB)
	}
	if cfg.Output.SlicePNG != "" {
		if err := writeSlices(lib, store, cfg, min, max); err != nil {
			return err
		}
	}
	return nil
}

func light(lib *registry.Library, store *world.BlockStore, cfg *config.Config) (lighting.BlockSet, error) {
	il := lighting.NewIlluminator(lib, store)
	touched := make(lighting.BlockSet)
	for _, src := range cfg.Lighting.Sources {
		pos := world.V3(src.Pos[0], src.Pos[1], src.Pos[2])
		modified, err := il.AddLightSource(cfg.Channels.Type, cfg.Channels.Light, pos, lighting.Light(src.Level), cfg.Lighting.Rounds)
		if errors.Is(err, lighting.ErrNotLoaded) {
			log.Printf("Light source at %v is outside the loaded area, skipped", pos)
			continue
		}
		if err != nil && !errors.Is(err, lighting.ErrRoundLimit) {
			return nil, fmt.Errorf("light source at %v: %w", pos, err)
		}
		if err != nil {
			log.Printf("Light source at %v: %v", pos, err)
		}
		touched.Merge(modified)
	}
	log.Printf("Lit %d sources, %d blocks touched", len(cfg.Lighting.Sources), len(touched))
	return touched, nil
}

func remesh(ctx context.Context, lib *registry.Library, store *world.BlockStore, cfg *config.Config, min, max world.Vec3i) ([]export.BlockMesh, error) {
	mesher := meshing.NewMesher(lib)
	mesher.SetOcclusionEnabled(cfg.Mesher.Occlusion)
	mesher.SetOcclusionDarkness(cfg.Mesher.Darkness)
	for id, m := range cfg.MeshMaterials() {
		if err := mesher.SetMaterial(id, m); err != nil {
			return nil, err
		}
	}

	pool := meshing.NewWorkerPool(mesher, cfg.Mesher.Workers, cfg.Mesher.QueueSize)
	defer pool.Shutdown()

	var blocks []world.Vec3i
	for _, bpos := range store.BlockPositions() {
		if bpos.ContainedIn(min, max) {
			blocks = append(blocks, bpos)
		}
	}

	results, err := pool.Remesh(ctx, store, blocks, cfg.Channels.Type)
	if err != nil {
		return nil, err
	}
	meshes := make([]export.BlockMesh, 0, len(results))
	triangles := 0
	for _, r := range results {
		if r.Error != nil {
			log.Printf("Skipping block %v: %v", r.Block, r.Error)
			continue
		}
		store.SetBlockNode(r.Block, r.Mesh)
		if r.Mesh.IsEmpty() {
			continue
		}
		triangles += r.Mesh.TriangleCount()
		meshes = append(meshes, export.BlockMesh{Block: r.Block, Mesh: r.Mesh})
	}
	log.Printf("Meshed %d blocks on %d workers: %d non-empty, %d triangles", len(blocks), pool.Workers(), len(meshes), triangles)
	return meshes, nil
}

func writeSlices(lib *registry.Library, store *world.BlockStore, cfg *config.Config, minBlock, maxBlock world.Vec3i) error {
	min := world.BlockToVoxel(minBlock)
	max := world.BlockToVoxel(maxBlock).Sub(world.V3(1, 1, 1))
	y := cfg.Output.SliceY

	img := debugview.Upscale(debugview.SliceImage(store, y, min, max, cfg.Channels.Type, debugview.PaletteFor(lib)), cfg.Output.SliceScale)
	debugview.Label(img, fmt.Sprintf("y=%d", y))
	if err := debugview.WritePNG(cfg.Output.SlicePNG, img); err != nil {
		return err
	}
	log.Printf("Wrote slice y=%d to %s", y, cfg.Output.SlicePNG)

	if !cfg.Lighting.Enabled {
		return nil
	}
	ext := filepath.Ext(cfg.Output.SlicePNG)
	lightPath := strings.TrimSuffix(cfg.Output.SlicePNG, ext) + "-light" + ext
	lightImg := debugview.Upscale(debugview.LightImage(store, y, min, max, cfg.Channels.Light), cfg.Output.SliceScale)
	return debugview.WritePNG(lightPath, lightImg)
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(profiling.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Serving metrics on %s/metrics, interrupt to exit", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("metrics server: %v", err)
	}
}
