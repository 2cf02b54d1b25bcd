package main

import (
	"github.com/bortnikau/quizparty/core/internal/app"
	"github.com/bortnikau/quizparty/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
