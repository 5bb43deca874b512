package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/voidshard/terramap"
	"github.com/voidshard/terramap/internal/catalog"
	"github.com/voidshard/terramap/internal/transport/ws"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to settings yaml (defaults if empty)")
		seed        = flag.Int64("seed", 0, "overrides the settings seed (0 keeps it)")
		outDir      = flag.String("out", "./out", "directory maps are written to")
		catalogPath = flag.String("catalog", "", "sqlite catalog to record maps in (disabled if empty)")
		serveAddr   = flag.String("serve", "", "serve generation over websocket on this address instead of generating once")
		writePNG    = flag.Bool("png", true, "write a texture png")
		writeMesh   = flag.Bool("mesh", true, "write the compressed binary mesh")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[terragen] ", log.LstdFlags)

	cfg := terramap.DefaultSettings()
	if *configPath != "" {
		loaded, err := terramap.LoadSettings(*configPath)
		if err != nil {
			logger.Fatalf("load settings: %v", err)
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	var cat *catalog.Catalog
	if *catalogPath != "" {
		var err error
		cat, err = catalog.Open(*catalogPath)
		if err != nil {
			logger.Fatalf("open catalog: %v", err)
		}
		defer cat.Close()
	}

	out := &writer{
		dir:  *outDir,
		png:  *writePNG,
		mesh: *writeMesh,
		cat:  cat,
		log:  logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serveAddr != "" {
		if err := serve(ctx, *serveAddr, out, logger); err != nil {
			logger.Fatalf("serve: %v", err)
		}
		return
	}

	gen := &terramap.Generator{Logger: logger}
	m, err := gen.Generate(ctx, cfg)
	if err != nil {
		logger.Fatalf("generate: %v", err)
	}
	if err := out.save(ctx, m); err != nil {
		logger.Fatalf("save: %v", err)
	}

	fmt.Printf("==stats==\n")
	fmt.Printf("\tseed:%d points:%d sites:%d hull:%d\n", m.Seed, m.Stats.Points, m.Stats.Sites, m.Stats.HullSites)
	fmt.Printf("\tsea level:%.4f land:%.3f rivers:%d fill passes:%d\n", m.WaterSurfaceZ, m.Stats.LandFraction, m.Stats.Rivers, m.Stats.FillPasses)
	fmt.Printf("\tSitesByBiome: %v\n", m.Stats.SitesByBiome)
}

// serve runs the websocket endpoint until ctx is done.
func serve(ctx context.Context, addr string, out *writer, logger *log.Logger) error {
	srv := ws.NewServer(logger)
	srv.OnMap = func(m *terramap.Map) {
		if err := out.save(context.Background(), m); err != nil {
			logger.Printf("save map %d: %v", m.Seed, err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})

	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdown)
	}()

	logger.Printf("listening on %s", addr)
	if err := hs.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// writer saves map outputs & records them in the catalog.
type writer struct {
	dir  string
	png  bool
	mesh bool
	cat  *catalog.Catalog
	log  *log.Logger
}

func (w *writer) save(ctx context.Context, m *terramap.Map) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	base := filepath.Join(w.dir, fmt.Sprintf("terramap.%d", m.Seed))

	entry := &catalog.Entry{
		Seed:         m.Seed,
		Points:       m.Stats.Points,
		Sites:        m.Stats.Sites,
		Rivers:       m.Stats.Rivers,
		LandFraction: m.Stats.LandFraction,
		SeaLevel:     m.WaterSurfaceZ,
		JSONPath:     base + ".json",
	}

	if err := m.SaveJSON(entry.JSONPath); err != nil {
		return err
	}
	if w.png {
		entry.ImagePath = base + ".png"
		if err := m.SavePNG(entry.ImagePath); err != nil {
			return err
		}
	}
	if w.mesh {
		entry.MeshPath = base + ".mesh.zst"
		if err := m.SaveMesh(entry.MeshPath); err != nil {
			return err
		}
	}
	w.log.Printf("wrote %s.*", base)

	if w.cat == nil {
		return nil
	}
	settings, err := json.Marshal(m.Settings)
	if err != nil {
		return err
	}
	entry.Settings = settings
	id, err := w.cat.Record(ctx, entry)
	if err != nil {
		return err
	}
	w.log.Printf("catalogued map %d as entry %d", m.Seed, id)
	return nil
}
