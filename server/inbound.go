// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SoftbearStudios/drift/sim"
	"github.com/finnbear/moderation"
)

// ProtocolVersion gates joins. Clients on another version get a join_error
// instead of desyncing mid-race.
const ProtocolVersion = 1

const (
	playerNameLengthMin = 3
	playerNameLengthMax = 16
)

// Make sure to register in init function
type (
	// JoinRoom is the first message on a connection. It is handled by the
	// RoomRegistry, not a room; by the time any other inbound is processed
	// the client is registered in its room.
	JoinRoom struct {
		RoomID            string `json:"roomId"`
		PlayerName        string `json:"playerName"`
		ProtocolVersion   int    `json:"protocolVersion"`
		SelectedVehicleID uint8  `json:"selectedVehicleId"`
		SelectedColorID   uint8  `json:"selectedColorId"`
	}

	// InputFrame carries one control frame. Fire and forget: loss is fine
	// because only the newest frame per consumption matters.
	InputFrame struct {
		Frame sim.InputFrame `json:"frame"`
	}

	// AbilityActivate requests an ability. The outcome arrives as a
	// race_event, ability_activated or ability_rejected.
	AbilityActivate struct {
		AbilityID      uint8        `json:"abilityId"`
		Seq            uint32       `json:"seq"`
		TargetPlayerID sim.PlayerID `json:"targetPlayerId"`
	}

	// RestartRace puts everyone back on the grid.
	RestartRace struct{}

	// InvalidInbound means invalid message type from client (possibly out of date).
	// NOTE: Do not register, otherwise client could send type "invalidInbound"
	InvalidInbound struct {
		messageType messageType
	}
)

func init() {
	registerInbound(
		AbilityActivate{},
		InputFrame{},
		JoinRoom{},
		RestartRace{},
	)
}

func (data JoinRoom) Inbound(_ *Room, _ Client) {
	// Joins are resolved by the registry before room registration; a
	// repeat join on a live connection is ignored.
}

func (data InputFrame) Inbound(room *Room, client Client) {
	room.simulation.QueueInput(client.Data().PlayerID, data.Frame)
}

func (data AbilityActivate) Inbound(room *Room, client Client) {
	room.simulation.QueueAbility(client.Data().PlayerID, data.AbilityID, data.TargetPlayerID)
}

func (data RestartRace) Inbound(room *Room, client Client) {
	room.restart(client.Data().PlayerID)
}

func (data InvalidInbound) Inbound(_ *Room, _ Client) {}

func trimUtf8(in string, low, high int) (str string, ok bool) {
	if !utf8.ValidString(in) {
		return "", false
	}

	str = strings.TrimSpace(in)

	// Too long but can resize down
	if len(str) > high {
		var builder strings.Builder
		for _, r := range str {
			if builder.Len()+utf8.RuneLen(r) > high {
				break
			}
			builder.WriteRune(r)
		}
		str = builder.String()
	}

	// Too short
	if len(str) < low {
		return "", false
	}
	ok = true
	return
}

// sanitizeName validates, trims, and censors a display name.
func sanitizeName(text string) (string, bool) {
	// Brackets are used in formatting, * in censoring
	const removals = "()[]{}*"
	for i := 0; i < len(removals); i++ {
		text = strings.ReplaceAll(text, removals[i:i+1], "")
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, text)

	text, ok := trimUtf8(text, playerNameLengthMin, playerNameLengthMax)
	if !ok {
		return "", false
	}

	result := moderation.Scan(text)
	if result.Is(moderation.Inappropriate) {
		if result.Is(moderation.Inappropriate & moderation.Moderate) {
			return "", false
		}
		text, _ = moderation.Censor(text, moderation.Inappropriate)
	}

	return text, true
}
