package utils

import (
	"time"
)

var registrationCooldowns = newExpiringSet("blogicum:reg:cooldown:")

// RegistrationCoolingDown reports whether ip registered an account too recently.
func RegistrationCoolingDown(ip string) bool {
	if ip == "" {
		return false
	}
	return registrationCooldowns.has(ip)
}

// StartRegistrationCooldown blocks further registrations from ip for cooldown.
// It is called after a successful sign-up so rejected forms can be corrected and resent.
func StartRegistrationCooldown(ip string, cooldown time.Duration) {
	if cooldown <= 0 || ip == "" {
		return
	}
	registrationCooldowns.add(ip, time.Now().Add(cooldown))
}
