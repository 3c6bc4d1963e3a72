package services

import (
	"context"

	"github.com/avatarctic/quantum-studio/internal/core/domain/system"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

type SystemService struct {
	providers []ports.LLMProvider
	cache     ports.CacheService
}

func NewSystemService(providers []ports.LLMProvider, cache ports.CacheService) ports.SystemService {
	return &SystemService{providers: providers, cache: cache}
}

// Status reports fixed dashboard values plus which providers hold credentials.
func (s *SystemService) Status(_ context.Context) *system.Status {
	apis := map[string]string{
		// placeholder integration, always reported as connected
		"coingecko": system.APIConnected,
	}
	for _, p := range s.providers {
		state := system.APIDisconnected
		if p.Configured() {
			state = system.APIConnected
		}
		apis[string(p.Name())] = state
	}
	st := &system.Status{
		DeviceAuthentication: "verified",
		MemoryEncryption:     "active",
		TheftProtection:      "enabled",
		BiometricLock:        "active",
		VMDetection:          "blocked",
		RootAccess:           "verified",
		SessionLog:           "secure",
		APIs:                 apis,
	}
	if s.cache != nil {
		st.Cache.Backend = s.cache.Backend()
	}
	return st
}
