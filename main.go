package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"

	"github.com/ihou-ev/10cardstad/config"
	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/network"
	"github.com/ihou-ev/10cardstad/service"
	"github.com/ihou-ev/10cardstad/state"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Println("main", err)
			async.PrintStackTrace(err)
		}
	}()
	path := flag.String("c", "stud.json", "config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Error(err)
		return
	}
	store, err := database.Open(cfg.Store, cfg.DSN)
	if err != nil {
		log.Error(err)
		return
	}
	defer store.Close()
	log.Infof("room store: %s\n", cfg.Store)

	svc := service.New(store, service.Options{
		AutoPlayDelay: cfg.AutoPlayDelay,
		RoomTTL:       cfg.RoomTTL,
	})
	auto := service.NewAutoplayer(svc)
	defer auto.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	async.Async(func() {
		svc.RunSweeper(ctx, cfg.SweepInterval)
	})

	session := network.Session{Machine: state.New(svc, auto, nil), Service: svc}
	async.Async(func() {
		log.Error(network.NewHttpServer(cfg.HTTPAddr, session).Serve())
	})
	server := network.NewTcpServer(cfg.TCPAddr, session)
	log.Error(server.Serve())
}
