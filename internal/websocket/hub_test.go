// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/Aldrich0129/automation-suite/internal/models"
)

// newHubClient registers a pumpless client directly with a running hub.
func newHubClient(t *testing.T, hub *Hub) *Client {
	t.Helper()

	client := &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		send: make(chan Message, 256),
	}

	select {
	case hub.Register <- client:
	case <-time.After(time.Second):
		t.Fatal("register timed out")
	}
	return client
}

func startHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
}

func TestRegisterAndUnregister(t *testing.T) {
	hub := startHub(t)

	client := newHubClient(t, hub)
	waitForCount(t, hub, 1)

	hub.Unregister <- client
	waitForCount(t, hub, 0)

	// The hub closes the send channel on unregister.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed")
	}
}

func TestBroadcastEventReachesAllClients(t *testing.T) {
	hub := startHub(t)

	first := newHubClient(t, hub)
	second := newHubClient(t, hub)
	waitForCount(t, hub, 2)

	event := &models.TelemetryEvent{ID: "ev-1", AppID: "invoice-gen", EventType: models.EventTypeOpen}
	hub.BroadcastEvent(event)

	for _, client := range []*Client{first, second} {
		select {
		case msg := <-client.send:
			if msg.Type != MessageTypeTelemetryEvent {
				t.Errorf("type = %q", msg.Type)
			}
			got, ok := msg.Data.(*models.TelemetryEvent)
			if !ok || got.ID != "ev-1" {
				t.Errorf("data = %+v", msg.Data)
			}
		case <-time.After(time.Second):
			t.Fatal("broadcast not delivered")
		}
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := startHub(t)

	slow := &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		send: make(chan Message), // unbuffered and never drained
	}
	hub.Register <- slow
	waitForCount(t, hub, 1)

	hub.BroadcastEvent(&models.TelemetryEvent{ID: "ev-1"})
	waitForCount(t, hub, 0)
}

func TestShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	client := newHubClient(t, hub)
	waitForCount(t, hub, 1)

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed on shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("clients after shutdown = %d", hub.ClientCount())
	}
}

func TestBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub() // not running

	// Fill the queue past capacity; extra events are dropped, not blocked on.
	for i := 0; i < 300; i++ {
		hub.BroadcastEvent(&models.TelemetryEvent{ID: "ev"})
	}
}
