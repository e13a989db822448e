// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package services

import (
	"context"
)

// EventHub matches *websocket.Hub's Run method without importing the
// websocket package.
type EventHub interface {
	Run(ctx context.Context) error
}

// HubService supervises the admin event feed hub. The hub's Run already
// follows the suture contract, so this wrapper only contributes a name.
type HubService struct {
	hub EventHub
}

// NewHubService wraps a hub for supervision.
func NewHubService(hub EventHub) *HubService {
	return &HubService{hub: hub}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.Run(ctx)
}

func (s *HubService) String() string {
	return "event-feed-hub"
}
