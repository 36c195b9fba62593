// thermal-transform - convert radiometric thermal images to calibrated rasters
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package throttle

import (
	"log"
	"time"

	"github.com/juju/ratelimit"
)

func NewThrottler(config *ThrottlerConfig, listener ThrottledEventListener) *Throttler {
	return NewThrottlerWithClock(config, listener, new(realClock))
}

func NewThrottlerWithClock(
	config *ThrottlerConfig,
	listener ThrottledEventListener,
	clock ratelimit.Clock,
) *Throttler {
	if listener == nil {
		listener = new(nullListener)
	}
	throttler := &Throttler{listener: listener}
	if !config.ApplyThrottling || config.BucketSize <= 0 || config.MinRefill <= 0 {
		return throttler
	}

	// The token bucket tracks the number of conversions available.
	refillRate := float64(config.BucketSize) / config.MinRefill.Seconds()
	throttler.bucket = ratelimit.NewBucketWithRateAndClock(refillRate, config.BucketSize, clock)
	return throttler
}

// Throttler limits how quickly files are converted when watching a
// directory. A camera stuck in a trigger loop can otherwise keep the
// device busy converting near identical images.
type Throttler struct {
	bucket    *ratelimit.Bucket
	listener  ThrottledEventListener
	throttled bool
}

type ThrottledEventListener interface {
	WhenThrottled()
}

type nullListener struct{}

func (lis *nullListener) WhenThrottled() {}

// Take reports whether a conversion may start now, using up one
// conversion if so. It never blocks. The listener is told once each time
// conversions start being held back.
func (throttler *Throttler) Take() bool {
	if throttler.bucket == nil {
		return true
	}
	if throttler.bucket.TakeAvailable(1) > 0 {
		throttler.throttled = false
		return true
	}
	if !throttler.throttled {
		throttler.throttled = true
		log.Print("conversions delayed due to throttling")
		throttler.listener.WhenThrottled()
	}
	return false
}

// Available returns the number of conversions that can start immediately,
// or -1 if throttling is disabled.
func (throttler *Throttler) Available() int64 {
	if throttler.bucket == nil {
		return -1
	}
	return throttler.bucket.Available()
}

// realClock implements ratelimit.Clock in terms of standard time functions.
type realClock struct{}

// Now implements Clock.Now by calling time.Now.
func (realClock) Now() time.Time {
	return time.Now()
}

// Sleep implements Clock.Sleep by calling time.Sleep.
func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
