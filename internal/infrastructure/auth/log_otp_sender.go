package auth

import (
	"context"

	"github.com/mfgops/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// LogOTPSender writes codes to the log instead of delivering them. It backs
// local runs until an SMS gateway is configured. With revealCode false only
// the phone is logged.
type LogOTPSender struct {
	logger     *zap.Logger
	revealCode bool
}

func NewLogOTPSender(logger *zap.Logger, revealCode bool) *LogOTPSender {
	return &LogOTPSender{logger: logger, revealCode: revealCode}
}

func (s *LogOTPSender) Send(_ context.Context, phone, code string) error {
	fields := []zap.Field{zap.String("phone", phone)}
	if s.revealCode {
		fields = append(fields, zap.String("code", code))
	}
	s.logger.Info("OTP issued", fields...)
	return nil
}

var _ identity.OTPSender = (*LogOTPSender)(nil)
