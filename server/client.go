// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/drift/sim"
)

type (
	// Client is an actor in a Room: a websocket player or a bot.
	Client interface {
		// Init is called once by the room goroutine when the client is
		// registered. client.Data().Room is set by then.
		Init()

		// Close is called by (only) the room goroutine when the client is
		// unregistered.
		Close()

		// Send delivers a message to the client.
		Send(out outbound)

		// Destroy marks the client for removal. It must unregister at most
		// once no matter how many times it is called, from any goroutine.
		Destroy()

		// Bot reports whether this is a headless client.
		Bot() bool

		// Data allows the client to live in a doubly-linked ClientList.
		Data() *ClientData
	}

	// ClientData is the state every client carries.
	ClientData struct {
		PlayerID sim.PlayerID
		Name     string
		Vehicle  sim.VehicleClass
		Color    sim.ColorID
		Room     *Room
		Previous Client
		Next     Client
	}

	// ClientList is a doubly-linked list of Clients, iterated as:
	// for client := list.First; client != nil; client = client.Data().Next {}
	ClientList struct {
		First Client
		Last  Client
		Len   int
	}
)

// Add adds a Client to the list.
func (list *ClientList) Add(client Client) {
	data := client.Data()
	if data.Previous != nil || data.Next != nil {
		panic("already added")
	}

	if list.First == nil {
		list.First = client
	} else if list.Last == nil {
		panic("invalid state")
	} else {
		list.Last.Data().Next = client
		data.Previous = list.Last
	}

	list.Last = client
	list.Len++
}

// Remove removes a Client from the list and returns the next element.
func (list *ClientList) Remove(client Client) (next Client) {
	data := client.Data()

	if data.Previous != nil {
		data.Previous.Data().Next = data.Next
	} else if list.First == client {
		list.First = data.Next
	} else {
		panic("already removed")
	}

	if data.Next != nil {
		data.Next.Data().Previous = data.Previous
	} else if list.Last == client {
		list.Last = data.Previous
	} else {
		panic("already removed")
	}

	list.Len--
	next = data.Next
	data.Next = nil
	data.Previous = nil

	return
}
