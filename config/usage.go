package config

import "time"

// UsageConfig controls the interview creation quota applied per owner.
type UsageConfig struct {
	// InterviewCredits is the number of interviews an owner may create per Period.
	// Zero or negative disables the quota.
	InterviewCredits int `env:"INTERVIEW_CREDITS" envDefault:"10"`

	// Period is the rolling window the credits apply to.
	Period time.Duration `env:"PERIOD" envDefault:"720h"`
}

// Sanitize applies guardrails to usage configuration values.
func (u *UsageConfig) Sanitize() {
	if u.InterviewCredits < 0 {
		u.InterviewCredits = 0
	}
	if u.Period < time.Hour {
		u.Period = time.Hour
	}
}

// Enabled reports whether creation should be gated at all.
func (u UsageConfig) Enabled() bool {
	return u.InterviewCredits > 0
}
