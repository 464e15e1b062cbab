// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wiretime implements the Date/Date32/DateTime/DateTime64 wrapper
// types, preserving the exact on-wire tick value and declared precision
// rather than lossily normalizing everything to a Go time.Duration.
package wiretime

import (
	"math/big"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Date is a u16 day count since the Unix epoch.
type Date struct {
	Days uint16
}

// DateFromTime truncates t to a whole day count since the epoch. Returns
// an error (via ok=false) if the day count does not fit in a uint16, per
// spec.md §4.F ("Encode rejects out-of-range").
func DateFromTime(t time.Time) (Date, bool) {
	days := t.UTC().Unix() / secondsPerDay
	if days < 0 || days > 0xFFFF {
		return Date{}, false
	}
	return Date{Days: uint16(days)}, true
}

// Time returns the UTC midnight instant for this Date.
func (d Date) Time() time.Time {
	return time.Unix(int64(d.Days)*secondsPerDay, 0).UTC()
}

// Date32 is a signed i32 day count since the epoch, with a wider range
// than Date.
type Date32 struct {
	Days int32
}

func Date32FromTime(t time.Time) (Date32, bool) {
	days := t.UTC().Unix() / secondsPerDay
	if days < -2147483648 || days > 2147483647 {
		return Date32{}, false
	}
	return Date32{Days: int32(days)}, true
}

func (d Date32) Time() time.Time {
	return time.Unix(int64(d.Days)*secondsPerDay, 0).UTC()
}

// DateTime is a u32 second count since the epoch.
type DateTime struct {
	Seconds uint32
}

func DateTimeFromTime(t time.Time) (DateTime, bool) {
	sec := t.UTC().Unix()
	if sec < 0 || sec > 0xFFFFFFFF {
		return DateTime{}, false
	}
	return DateTime{Seconds: uint32(sec)}, true
}

func (d DateTime) Time() time.Time {
	return time.Unix(int64(d.Seconds), 0).UTC()
}

// DateTime64 preserves the exact integer tick count (seconds * 10^P) and
// its declared precision P, rather than rounding through a fixed
// fractional-second resolution.
type DateTime64 struct {
	Ticks     *big.Int
	Precision int // 0..9
}

var pow10 = func() [10]*big.Int {
	var t [10]*big.Int
	v := big.NewInt(1)
	for i := 0; i < 10; i++ {
		t[i] = new(big.Int).Set(v)
		v = new(big.Int).Mul(v, big.NewInt(10))
	}
	return t
}()

// DateTime64FromTime converts t (with millisecond resolution, as Go's
// time.Time effectively offers at the wire boundary) into ticks of the
// given precision, per spec.md §4.F's scaling rule: if P>=3,
// ticks = ms * 10^(P-3); else ticks = ms / 10^(3-P). All arithmetic is
// done with big.Int so no fractional exponent ever appears.
func DateTime64FromTime(t time.Time, precision int) DateTime64 {
	ms := t.UnixMilli()
	bigMs := big.NewInt(ms)
	var ticks *big.Int
	if precision >= 3 {
		ticks = new(big.Int).Mul(bigMs, pow10[precision-3])
	} else {
		ticks = new(big.Int).Div(bigMs, pow10[3-precision])
	}
	return DateTime64{Ticks: ticks, Precision: precision}
}

// Time reconstructs a time.Time truncated to the declared precision
// (never finer than millisecond, matching the host platform's clock
// resolution at this wire boundary).
func (d DateTime64) Time() time.Time {
	var ms *big.Int
	if d.Precision >= 3 {
		ms = new(big.Int).Div(d.Ticks, pow10[d.Precision-3])
	} else {
		ms = new(big.Int).Mul(d.Ticks, pow10[3-d.Precision])
	}
	return time.UnixMilli(ms.Int64()).UTC()
}
