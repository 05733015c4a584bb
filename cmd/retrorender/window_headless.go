//go:build headless

package main

import (
	"context"
	"errors"
)

// runWindow is unavailable in headless builds.
func runWindow(ctx context.Context, g *game, scale int) error {
	return errors.New("built headless: the window presenter is unavailable")
}
