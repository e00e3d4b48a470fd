package identity

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/mfgops/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const otpBcryptCost = bcrypt.DefaultCost

var (
	ErrOTPExpired          = shared.NewDomainError("OTP_EXPIRED", "The code has expired, request a new one")
	ErrOTPInvalid          = shared.NewDomainError("OTP_INVALID", "The code is incorrect")
	ErrOTPAttemptsExceeded = shared.NewDomainError("OTP_ATTEMPTS_EXCEEDED", "Too many incorrect codes, request a new one")
	ErrOTPTooSoon          = shared.NewDomainError("OTP_TOO_SOON", "A code was sent recently, wait before requesting another")
)

// OTPChallenge is a pending one-time passcode for a phone number. Only the
// bcrypt hash of the code is kept.
type OTPChallenge struct {
	Phone       string    `json:"phone"`
	CodeHash    string    `json:"code_hash"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
}

// NewOTPChallenge hashes code and starts a challenge valid for ttl.
func NewOTPChallenge(phone, code string, ttl time.Duration, maxAttempts int, now time.Time) (*OTPChallenge, error) {
	if ttl <= 0 || maxAttempts <= 0 {
		return nil, shared.NewDomainError("INVALID_OTP_CONFIG", "OTP ttl and attempts must be positive")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), otpBcryptCost)
	if err != nil {
		return nil, shared.WrapDomainError("OTP_HASH_ERROR", "Failed to hash code", err)
	}
	return &OTPChallenge{
		Phone:       phone,
		CodeHash:    string(hash),
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		MaxAttempts: maxAttempts,
	}, nil
}

func (c *OTPChallenge) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Remaining returns the attempts left.
func (c *OTPChallenge) Remaining() int {
	if c.Attempts >= c.MaxAttempts {
		return 0
	}
	return c.MaxAttempts - c.Attempts
}

// CountAttempt records one verification try. Stores call it atomically
// before the code is compared.
func (c *OTPChallenge) CountAttempt() {
	c.Attempts++
}

// Verify checks code against a challenge whose Attempts already includes
// this try. Tries past MaxAttempts are refused without comparing the hash,
// and the try that uses the last attempt reports ErrOTPAttemptsExceeded when
// the code is wrong.
func (c *OTPChallenge) Verify(code string, now time.Time) error {
	if c.IsExpired(now) {
		return ErrOTPExpired
	}
	if c.Attempts > c.MaxAttempts {
		return ErrOTPAttemptsExceeded
	}
	if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) != nil {
		if c.Remaining() == 0 {
			return ErrOTPAttemptsExceeded
		}
		return ErrOTPInvalid
	}
	return nil
}

// GenerateOTPCode returns a random numeric code of the given length.
func GenerateOTPCode(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", shared.NewDomainError("INVALID_OTP_CONFIG", "OTP length must be between 4 and 10")
	}
	code := make([]byte, digits)
	ten := big.NewInt(10)
	for i := range code {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
