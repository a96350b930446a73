package service

import "time"

const (
	waitFor   = 2 * time.Second
	pollEvery = 5 * time.Millisecond
)
