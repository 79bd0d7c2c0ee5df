// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

// Score is a best race time. Lower TimeMs is better.
type Score struct {
	Type   string `dynamo:"type"`
	Name   string `dynamo:"name"`
	TimeMs int64  `dynamo:"timeMs"`
	TTL    int64  `dynamo:"ttl,omitempty"`
}

type Server struct {
	Region  string `dynamo:"region"`
	Host    string `dynamo:"host"`
	Players int    `dynamo:"players"`
	TTL     int64  `dynamo:"ttl,omitempty"`
}
