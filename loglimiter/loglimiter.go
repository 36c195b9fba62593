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

package loglimiter

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// New returns a new LogLimiter with the configured minimum log interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval:   interval,
		nowFunc:    time.Now,
		last:       make(map[string]time.Time),
		suppressed: make(map[string]int),
	}
}

// LogLimiter suppresses log messages of the same kind seen within some
// time interval. Messages are grouped by a caller supplied key so that,
// for example, the same tool failure for many different files is only
// reported once per interval. It is safe for concurrent use.
type LogLimiter struct {
	mu         sync.Mutex
	interval   time.Duration
	nowFunc    func() time.Time
	last       map[string]time.Time
	suppressed map[string]int
}

func (limiter *LogLimiter) Printf(key, format string, v ...interface{}) {
	limiter.Print(key, fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(key, s string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.nowFunc()
	if last, ok := limiter.last[key]; ok && now.Sub(last) < limiter.interval {
		limiter.suppressed[key]++
		return
	}

	if n := limiter.suppressed[key]; n > 0 {
		s = fmt.Sprintf("%s (%d similar suppressed)", s, n)
	}
	log.Print(s)
	limiter.last[key] = now
	delete(limiter.suppressed, key)
}
