package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cppla/blogicum/config"
)

func TestExpiringSetInMemory(t *testing.T) {
	s := newExpiringSet("test:")

	s.add("live", time.Now().Add(time.Minute))
	s.add("stale", time.Now().Add(-time.Second))

	assert.True(t, s.has("live"))
	assert.False(t, s.has("stale"))
	assert.False(t, s.has("missing"))

	assert.True(t, s.take("live"))
	assert.False(t, s.take("live"), "take consumes the key")
}

func TestOAuthStateIsSingleUse(t *testing.T) {
	config.Set(config.AppConfig{JWTSecret: "test-secret"})
	SaveState("state-1", time.Minute)
	assert.True(t, ConsumeState("state-1"))
	assert.False(t, ConsumeState("state-1"))
	assert.False(t, ConsumeState("never-issued"))
}

func TestRegistrationCooldown(t *testing.T) {
	config.Set(config.AppConfig{JWTSecret: "test-secret"})

	StartRegistrationCooldown("192.0.2.10", 0)
	assert.False(t, RegistrationCoolingDown("192.0.2.10"), "zero cooldown disables the check")

	StartRegistrationCooldown("192.0.2.10", time.Minute)
	assert.True(t, RegistrationCoolingDown("192.0.2.10"))
	assert.False(t, RegistrationCoolingDown("192.0.2.11"))
}
