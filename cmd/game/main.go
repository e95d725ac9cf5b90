package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/vr-targets/internal/game"
	"github.com/Garsondee/vr-targets/internal/render"
	"github.com/Garsondee/vr-targets/internal/viewer"
)

func main() {
	variant := flag.String("variant", "targetvr", "game variant (targetvr, trafficvr)")
	seed := flag.Int64("seed", 1, "RNG seed for target placement")
	captureDir := flag.String("capture-dir", "", "record the opening panorama frames into this directory")
	captureFormat := flag.String("capture-format", "png", "capture image format (png, bmp, tiff)")
	flag.Parse()

	cfg, err := game.ConfigFor(*variant)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Seed = *seed

	v, err := viewer.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()

	if *captureDir != "" {
		s := v.Session()
		frames := max(cfg.CaptureFrames, 1)
		w, h := cfg.CaptureWidth, cfg.CaptureHeight
		if w <= 0 || h <= 0 {
			w, h = 1920, 1080
		}
		pano, err := game.NewPanorama(w, h, s.Camera(), render.NewRaycaster())
		if err != nil {
			log.Fatal(err)
		}
		sink, err := render.NewDirSink(*captureDir, *captureFormat)
		if err != nil {
			log.Fatal(err)
		}
		if err := s.AttachRecorder(game.NewRecorder(pano, sink, frames)); err != nil {
			log.Fatal(err)
		}
	}

	ebiten.SetWindowTitle("VR Targets - " + cfg.Name)
	ebiten.SetWindowSize(v.Size())
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
