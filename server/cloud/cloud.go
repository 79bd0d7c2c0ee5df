// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/SoftbearStudios/drift/server/cloud/db"
)

const UpdatePeriod = 30 * time.Second

// How many records a leaderboard type keeps.
const leaderboardMax = 10

// Cloud persists best race times and server presence to DynamoDB.
// A nil cloud is valid to use with any methods (acts as a no-op)
// This just means server is in offline mode
type Cloud struct {
	region   string
	stage    string
	host     string
	database db.Database
}

func (cloud *Cloud) String() string {
	var builder strings.Builder
	builder.WriteByte('[')
	if cloud == nil {
		builder.WriteString("offline")
	} else {
		builder.WriteString(cloud.region)
		builder.WriteByte(' ')
		builder.WriteString(cloud.stage)
		builder.WriteByte(' ')
		builder.WriteString(cloud.host)
	}
	builder.WriteByte(']')
	return builder.String()
}

// New connects to the configured stage. Returns nil cloud on error, which
// downstream treats as offline mode.
func New(region, stage string) (*Cloud, error) {
	cloud := &Cloud{
		region: region,
		stage:  stage,
	}

	var err error
	cloud.host, err = os.Hostname()
	if err != nil {
		return nil, err
	}

	session, err := getAWSSession(region)
	if err != nil {
		return nil, err
	}

	cloud.database, err = db.NewDynamoDBDatabase(session, stage)
	if err != nil {
		return nil, err
	}

	if err = cloud.UpdateServer(0); err != nil {
		return nil, err
	}

	return cloud, nil
}

// Call at least every 30s
func (cloud *Cloud) UpdateServer(players int) error {
	if cloud == nil {
		return nil
	}
	return cloud.database.UpdateServer(db.Server{
		Region:  cloud.region,
		Host:    cloud.host,
		Players: players,
		TTL:     time.Now().Unix() + int64(UpdatePeriod/time.Second) + 5,
	})
}

// UpdateBestTime records a finished race, keeping the all-time, weekly,
// and daily best per name. Lower is better.
func (cloud *Cloud) UpdateBestTime(name string, timeMs int64) (err error) {
	if cloud == nil {
		return nil
	}

	// Seconds
	now := time.Now().Unix()
	day := int64(60 * 60 * 24)

	for _, entry := range []struct {
		scoreType string
		ttl       int64
	}{
		{"race/all", 0},
		{"race/week", now + day*7},
		{"race/day", now + day},
	} {
		err = cloud.database.UpdateScore(db.Score{
			Type:   entry.scoreType,
			Name:   name,
			TimeMs: timeMs,
			TTL:    entry.ttl,
		})
		if err != nil {
			return
		}
	}

	return
}

// ReadLeaderboard returns the fastest times for a score type, ascending.
func (cloud *Cloud) ReadLeaderboard(scoreType string) ([]db.Score, error) {
	if cloud == nil {
		return nil, nil
	}

	scores, err := cloud.database.ReadScoresByType(scoreType)
	if err != nil {
		return nil, err
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].TimeMs < scores[j].TimeMs
	})

	if len(scores) > leaderboardMax {
		scores = scores[:leaderboardMax]
	}
	return scores, nil
}
