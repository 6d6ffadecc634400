package systemprompt

import (
	"fmt"
	"time"
)

// DatetimeProvider adds the current date and time to the system prompt,
// so relative words like "this weekend" resolve against the real calendar.
type DatetimeProvider struct {
	now func() time.Time
}

var _ ContextProvider = (*DatetimeProvider)(nil)

// NewDatetimeProvider returns a DatetimeProvider. now defaults to time.Now.
func NewDatetimeProvider(now func() time.Time) *DatetimeProvider {
	if now == nil {
		now = time.Now
	}
	return &DatetimeProvider{now: now}
}

func (p DatetimeProvider) Title() string {
	return "Current date and time"
}

func (p DatetimeProvider) Info() string {
	t := p.now()
	return fmt.Sprintf("- %s (%s)", t.Format("2006-01-02 15:04 MST"), t.Weekday())
}
