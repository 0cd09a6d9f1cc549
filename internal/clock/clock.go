// Package clock, zamanlayıcıların testte deterministik çalışabilmesi için
// time paketinin ince bir soyutlaması.
package clock

import "time"

type Timer interface {
	// Stop: zamanlayıcı henüz tetiklenmediyse iptal eder ve true döner
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
