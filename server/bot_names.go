// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	_ "embed"
	"math/rand"
	"strconv"
	"strings"
)

//go:embed names.txt
var botNamesRaw string

var botNames = strings.Split(strings.ToLower(botNamesRaw), "\n")

func randomBotName(r *rand.Rand) (name string) {
	for name == "" {
		name = botNames[r.Intn(len(botNames))]
	}

	if prob(r, 0.1) {
		name = strings.ToUpper(name)
	}

	if prob(r, 0.25) {
		name += strconv.Itoa(r.Intn(99) + 1)
	}

	return
}
