package smssvc

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/sms"
)

// console logs messages instead of sending them. Used in debug mode.
type console struct {
	logger  core.Logger
	balance decimal.Decimal
}

var _ sms.Gateway = (*console)(nil)

func NewConsole(conf *core.Config, logger core.Logger) sms.Gateway {
	return &console{logger: logger, balance: conf.SMS.ConsoleBalance}
}

func (gw *console) Send(_ context.Context, sub sms.Submission) (int, error) {
	gw.logger.Info(fmt.Sprintf("SMS to %s (%d parts):\n%s", sub.Number, sms.Segment(sub.Message).PartCount, sub.Message))
	return sms.CodeSubmitted, nil
}

func (gw *console) Balance(_ context.Context) (decimal.Decimal, error) {
	return gw.balance, nil
}
