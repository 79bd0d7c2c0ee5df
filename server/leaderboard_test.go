// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"testing"
)

func TestInsertRecordOrdering(t *testing.T) {
	var records []LapRecord
	records = insertRecord(records, LapRecord{Name: "apex", TimeMs: 90000}, leaderboardSize)
	records = insertRecord(records, LapRecord{Name: "drift", TimeMs: 60000}, leaderboardSize)
	records = insertRecord(records, LapRecord{Name: "chicane", TimeMs: 75000}, leaderboardSize)

	expected := []string{"drift", "chicane", "apex"}
	if len(records) != len(expected) {
		t.Fatalf("expected %d records, got %d", len(expected), len(records))
	}
	for i, name := range expected {
		if records[i].Name != name {
			t.Errorf("rank %d: expected %s, got %s", i, name, records[i].Name)
		}
	}
}

func TestInsertRecordKeepsBestPerName(t *testing.T) {
	var records []LapRecord
	records = insertRecord(records, LapRecord{Name: "apex", TimeMs: 90000}, leaderboardSize)
	records = insertRecord(records, LapRecord{Name: "apex", TimeMs: 80000}, leaderboardSize)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].TimeMs != 80000 {
		t.Errorf("expected improved time to replace, got %d", records[0].TimeMs)
	}

	// Worse time never displaces the best.
	records = insertRecord(records, LapRecord{Name: "apex", TimeMs: 95000}, leaderboardSize)
	if len(records) != 1 || records[0].TimeMs != 80000 {
		t.Errorf("expected worse time ignored, got %+v", records)
	}
}

// captureClient records what a room sends it.
type captureClient struct {
	ClientData
	sent []outbound
}

func (client *captureClient) Init()    {}
func (client *captureClient) Close()   {}
func (client *captureClient) Destroy() {}

func (client *captureClient) Bot() bool {
	return true
}

func (client *captureClient) Data() *ClientData {
	return &client.ClientData
}

func (client *captureClient) Send(message outbound) {
	client.sent = append(client.sent, message)
}

func TestSendLeaderboardCopiesRecords(t *testing.T) {
	room := &Room{}
	room.records = insertRecord(nil, LapRecord{Name: "apex", TimeMs: 90000}, leaderboardSize)

	client := &captureClient{}
	room.clients.Add(client)

	room.sendLeaderboard()

	// A faster finish shifts the backing array; the queued message must
	// still read as it did when it was sent.
	room.records = insertRecord(room.records, LapRecord{Name: "drift", TimeMs: 60000}, leaderboardSize)

	if len(client.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(client.sent))
	}
	sent := client.sent[0].(Leaderboard).Leaderboard
	if len(sent) != 1 || sent[0].Name != "apex" {
		t.Errorf("queued leaderboard mutated after send: %+v", sent)
	}
}

func TestInsertRecordCapped(t *testing.T) {
	var records []LapRecord
	for i := 0; i < leaderboardSize+5; i++ {
		records = insertRecord(records, LapRecord{
			Name:   fmt.Sprintf("racer%d", i),
			TimeMs: int64(100000 - i*1000),
		}, leaderboardSize)
	}

	if len(records) != leaderboardSize {
		t.Fatalf("expected %d records, got %d", leaderboardSize, len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].TimeMs > records[i].TimeMs {
			t.Errorf("records out of order at %d: %d > %d", i, records[i-1].TimeMs, records[i].TimeMs)
		}
	}
	// The slowest entries fell off.
	if records[0].TimeMs != int64(100000-(leaderboardSize+4)*1000) {
		t.Errorf("expected fastest time first, got %d", records[0].TimeMs)
	}
}
