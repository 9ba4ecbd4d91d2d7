package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"cityconquer.ai/internal/city"
	"cityconquer.ai/internal/logging"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory (empty disables logs)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index")
		seed       = flag.Int64("seed", 0, "template selection seed (0 = from clock)")
		width      = flag.Int("width", 1280, "window width")
		height     = flag.Int("height", 800, "window height")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Component("cityview")
	s, err := city.Open(ctx, city.Options{
		ConfigDir:  *configDir,
		TuningPath: *tuningPath,
		DataDir:    *dataDir,
		DisableDB:  *disableDB,
		Seed:       *seed,
	})
	if err != nil {
		log.WithError(err).Fatal("assemble city")
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("close session")
		}
	}()

	ebiten.SetWindowTitle("City Conquer")
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(newGame(s, *width, *height, log)); err != nil {
		log.WithError(err).Error("run game")
	}
}
