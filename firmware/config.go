//go:build tinygo

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/servo"
)

// PinConfig wires the bin to a Raspberry Pi Pico.
type PinConfig struct {
	Trigger   machine.Pin
	Echo      machine.Pin
	ServoPWM  servo.PWM
	Servo     machine.Pin
	HX711SCK  machine.Pin
	HX711DOUT machine.Pin
	Green     machine.Pin
	Red       machine.Pin
	Disinfect machine.Pin
	// Buzzer is machine.NoPin when not fitted
	Buzzer machine.Pin
}

// BinConfig has the timing and threshold values of both loops
type BinConfig struct {
	DistancePoll   time.Duration
	CloseDelay     time.Duration
	OpenDistanceCm float64
	OpenedAngle    int
	ClosedAngle    int

	WeightPoll     time.Duration
	MaxWeightGrams float64
	DisinfectDelay time.Duration
	DisinfectPulse time.Duration
	BuzzerPulse    time.Duration

	CountsPerGram float64
	TareSamples   int
}
