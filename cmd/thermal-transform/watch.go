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

package main

import (
	"log"
	"sort"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/maruel/interrupt"
	fsnotify "gopkg.in/fsnotify.v1"

	"github.com/TheCacophonyProject/thermal-transform/decode"
	"github.com/TheCacophonyProject/thermal-transform/throttle"
)

const (
	// Files are converted once they haven't changed for this long.
	settleTime   = 2 * time.Second
	pollInterval = time.Second
)

// pendingFiles tracks files that are still being written.
type pendingFiles struct {
	settle  time.Duration
	changed map[string]time.Time
}

func newPendingFiles(settle time.Duration) *pendingFiles {
	return &pendingFiles{
		settle:  settle,
		changed: make(map[string]time.Time),
	}
}

func (p *pendingFiles) touch(filename string, t time.Time) {
	p.changed[filename] = t
}

func (p *pendingFiles) remove(filename string) {
	delete(p.changed, filename)
}

// ready removes and returns, in name order, the files which haven't
// changed for the settle time.
func (p *pendingFiles) ready(now time.Time) []string {
	var out []string
	for filename, t := range p.changed {
		if now.Sub(t) >= p.settle {
			out = append(out, filename)
			delete(p.changed, filename)
		}
	}
	sort.Strings(out)
	return out
}

func (p *pendingFiles) handleEvent(event fsnotify.Event, now time.Time) {
	if !decode.Supported(event.Name) {
		return
	}
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		p.remove(event.Name)
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		p.touch(event.Name, now)
	}
}

// runWatch converts files as they are written to the watch directory
// until interrupted.
func runWatch(conf *Config, proc *processor) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(conf.WatchDir); err != nil {
		return err
	}

	throttler := throttle.NewThrottler(&conf.Throttler, new(throttleEventListener))

	log.Println("starting d-bus service")
	if err := startService(proc); err != nil {
		return err
	}

	// Pick up anything which arrived while we weren't running.
	pending := newPendingFiles(settleTime)
	existing, err := collectInputs([]string{conf.WatchDir})
	if err != nil {
		return err
	}
	for _, filename := range existing {
		if !proc.upToDate(filename) {
			pending.touch(filename, time.Time{})
		}
	}

	daemon.SdNotify(false, "READY=1")
	log.Printf("watching %s", conf.WatchDir)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-interrupt.Channel:
			log.Println("interrupted")
			return nil
		case err := <-watcher.Errors:
			return err
		case event := <-watcher.Events:
			pending.handleEvent(event, time.Now())
		case now := <-ticker.C:
			daemon.SdNotify(false, "WATCHDOG=1")
			convertReady(proc, pending, throttler, now)
		}
	}
}

// convertReady converts the settled files while the throttler allows.
// Files held back stay pending and are retried on a later tick.
func convertReady(proc *processor, pending *pendingFiles, throttler *throttle.Throttler, now time.Time) {
	files := pending.ready(now)
	for i, filename := range files {
		if interrupt.IsSet() {
			return
		}
		if !throttler.Take() {
			for _, held := range files[i:] {
				pending.touch(held, time.Time{})
			}
			return
		}
		convertWatched(proc, filename)
	}
}

func convertWatched(proc *processor, filename string) {
	outPath, err := proc.processFile(filename)
	if err != nil {
		proc.report(err)
		reportFailure(err)
		return
	}
	log.Printf("converted %s to %s", filename, outPath)
}
