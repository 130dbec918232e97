package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/docvault/docvault/internal/config"
)

// OTPProvider generates verification codes. Swapping the provider changes
// what codes get issued without touching the auth flow.
type OTPProvider interface {
	Generate() string
}

type fixedOTPProvider struct {
	code string
}

func (p fixedOTPProvider) Generate() string {
	return p.code
}

type randomOTPProvider struct{}

func (randomOTPProvider) Generate() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return fmt.Sprintf("%06d", rng.Intn(1000000))
}

func NewOTPProvider(cfg config.OTPConfig) OTPProvider {
	if cfg.Mode == "random" {
		return randomOTPProvider{}
	}
	code := cfg.FixedCode
	if code == "" {
		code = "123456"
	}
	return fixedOTPProvider{code: code}
}
