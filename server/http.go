// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"net/http"
)

// ServeIndex serves the status JSON.
func (registry *RoomRegistry) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	buf, ok := registry.statusJSON.Load().([]byte)
	if ok {
		_, _ = w.Write(buf)
	}
}

// ServeSocket upgrades a connection and starts its pumps. The client
// joins a room once it sends joinRoom.
func (registry *RoomRegistry) ServeSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		registry.log.Debug().Err(err).Msg("upgrade error")
		return
	}

	NewSocketClient(registry, conn).Start()
}
