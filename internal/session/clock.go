package session

import "time"

// Clock 时钟抽象，测试中可注入假时钟快进，替代真实定时器
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }
