package controllers

import (
	"ecolens/config"
	"ecolens/services"
	"ecolens/storage"
)

var (
	store       storage.Store
	cfg         *config.Config
	scanLimiter services.ScanLimiter
)

// Init wires the shared dependencies used by all controllers.
func Init(s storage.Store, c *config.Config, limiter services.ScanLimiter) {
	store = s
	cfg = c
	scanLimiter = limiter
}
