package app

import (
	"log/slog"

	"github.com/bortnikau/quizparty/core/internal/config"
	http_init "github.com/bortnikau/quizparty/core/internal/delivery/http/init"
	http_room "github.com/bortnikau/quizparty/core/internal/delivery/http/room"
	ws_game "github.com/bortnikau/quizparty/core/internal/delivery/ws/game"
	infra_bank "github.com/bortnikau/quizparty/core/internal/infra/bank"
	infra_pg_init "github.com/bortnikau/quizparty/core/internal/infra/postgres/init"
	infra_postgres_archive "github.com/bortnikau/quizparty/core/internal/infra/postgres/archive"
	infra_redis_init "github.com/bortnikau/quizparty/core/internal/infra/redis/init"
	infra_redis_roomcode_set "github.com/bortnikau/quizparty/core/internal/infra/redis/roomcode_set"
	usecase_answer "github.com/bortnikau/quizparty/core/internal/usecase/answer"
	usecase_room "github.com/bortnikau/quizparty/core/internal/usecase/room"
)

func Go(cfg *config.Config) {
	logger := slog.Default()

	bank := infra_bank.MustLoad(cfg.Bank.Path)

	roomOpts := []usecase_room.UsecaseOption{usecase_room.WithLogger(logger)}
	if cfg.Redis.Enabled {
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		roomOpts = append(roomOpts,
			usecase_room.WithCodeSet(infra_redis_roomcode_set.New(redisConn, "live_room_codes")))
	}
	roomUC := usecase_room.New(bank, usecase_room.Options{
		SampleSize:    cfg.Bank.SampleSize,
		AllowLateJoin: cfg.Game.AllowLateJoin,
	}, roomOpts...)

	answerOpts := []usecase_answer.UsecaseOption{usecase_answer.WithLogger(logger)}
	if cfg.Postgres.Enabled {
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		answerOpts = append(answerOpts,
			usecase_answer.WithArchiver(infra_postgres_archive.New(pgConn)))
	}
	answerUC := usecase_answer.New(roomUC, answerOpts...)

	hub := ws_game.NewHub(logger)
	gateway := ws_game.NewController(hub, roomUC, answerUC, ws_game.WithLogger(logger))

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_room.New(roomUC, answerUC, http_room.WithLogger(logger)))
	controllerPool.Add(gateway)

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
