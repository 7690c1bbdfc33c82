package loans

import (
	"fmt"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/civil"
)

// Policy は貸出期間のルール。返却期限は貸出日から MaxDays 日以内。
type Policy struct {
	DefaultDays int
	MaxDays     int
}

func DefaultPolicy() Policy {
	return Policy{DefaultDays: 14, MaxDays: 30}
}

func (p Policy) maxPeriodError() error {
	return apierr.ErrInvalid(fmt.Sprintf("Maximum loan period is %d days", p.MaxDays))
}

// DueDate は貸出日数から返却期限を決める。days が nil なら DefaultDays。
func (p Policy) DueDate(loanDate civil.Date, days *int) (civil.Date, error) {
	n := p.DefaultDays
	if days != nil {
		n = *days
	}
	if n < 0 {
		return civil.Date{}, apierr.ErrInvalid("loan_days must not be negative")
	}
	if n > p.MaxDays {
		return civil.Date{}, p.maxPeriodError()
	}
	return loanDate.AddDays(n), nil
}

// ValidateDue は期限変更時のチェック。基準は常に貸出日（今日ではない）。
func (p Policy) ValidateDue(loanDate, due civil.Date) error {
	if due.Before(loanDate) {
		return apierr.ErrInvalid("Due date cannot be before loan date")
	}
	if due.DaysSince(loanDate) > p.MaxDays {
		return p.maxPeriodError()
	}
	return nil
}
