//go:build headless

// alert_headless.go - Silent alert beeper for headless builds

package main

import "errors"

type AlertBeeper struct{}

func NewAlertBeeper() *AlertBeeper { return &AlertBeeper{} }

func (b *AlertBeeper) Beep() error {
	return errors.New("audio not available in headless build")
}
