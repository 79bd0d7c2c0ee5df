// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/SoftbearStudios/drift/server"
	"github.com/SoftbearStudios/drift/server/cloud"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/net/netutil"
)

func loadConfig() {
	viper.SetDefault("port", 8192)
	viper.SetDefault("maxConnections", 256)
	viper.SetDefault("players", 8)
	viper.SetDefault("laps", 3)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("resultLog", "")
	viper.SetDefault("auth", "")
	viper.SetDefault("cloud.region", "")
	viper.SetDefault("cloud.stage", "")

	viper.SetConfigName("drift")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("drift")
	viper.AutomaticEnv()

	// The config file is optional; defaults plus env plus flags are enough.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Warn().Err(err).Msg("config file ignored")
		}
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	loadConfig()

	var (
		auth           string
		port           int
		maxConnections int
		players        int
		laps           int
	)

	flag.StringVar(&auth, "auth", viper.GetString("auth"), "admin auth code")
	flag.IntVar(&port, "port", viper.GetInt("port"), "http service port")
	flag.IntVar(&maxConnections, "max-connections", viper.GetInt("maxConnections"), "maximum number of inbound TCP connections")
	flag.IntVar(&players, "players", viper.GetInt("players"), "minimum number of players per room")
	flag.IntVar(&laps, "laps", viper.GetInt("laps"), "laps per race")
	flag.Parse()

	if level, err := zerolog.ParseLevel(viper.GetString("logLevel")); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if players < 0 {
		log.Fatal().Int("players", players).Msg("invalid argument players")
	}
	if laps < 1 {
		log.Fatal().Int("laps", laps).Msg("invalid argument laps")
	}

	var c *cloud.Cloud
	if region := viper.GetString("cloud.region"); region != "" {
		var err error
		c, err = cloud.New(region, viper.GetString("cloud.stage"))
		if err != nil {
			log.Warn().Err(err).Msg("cloud unavailable, running offline")
		}
	}
	log.Info().Stringer("cloud", c).Msg("cloud configured")

	registry := server.NewRoomRegistry(server.Config{
		MinPlayers: players,
		TotalLaps:  laps,
		ResultLog:  viper.GetString("resultLog"),
		Auth:       auth,
	}, c, log.Logger)

	log.Info().Int("port", port).Msg("server started")

	http.HandleFunc("/", registry.ServeIndex)
	http.HandleFunc("/ws", registry.ServeSocket)

	listener, err := net.Listen("tcp", fmt.Sprint(":", port))
	if err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	defer listener.Close()

	listener = netutil.LimitListener(listener, maxConnections)

	log.Fatal().Err(http.Serve(listener, nil)).Msg("serve")
}
