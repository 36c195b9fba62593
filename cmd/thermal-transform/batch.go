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
	"sync"

	"github.com/maruel/interrupt"
)

type batchResult struct {
	converted int
	failed    int
	skipped   int
}

// runBatch converts files using a fixed pool of workers. Files not yet
// started when an interrupt arrives are skipped. Files which would
// overwrite the output of an earlier file fail without being converted.
func runBatch(p *processor, files []string, workers int) batchResult {
	if workers < 1 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		result batchResult
		wg     sync.WaitGroup
	)
	files, collisions := p.splitCollisions(files)
	for _, err := range collisions {
		p.report(err)
	}
	result.failed = len(collisions)

	jobs := make(chan string)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for filename := range jobs {
				outPath, err := p.processFile(filename)
				mu.Lock()
				if err != nil {
					result.failed++
				} else {
					result.converted++
				}
				mu.Unlock()

				if err != nil {
					p.report(err)
					continue
				}
				log.Printf("converted %s to %s", filename, outPath)
			}
		}()
	}

	for i, filename := range files {
		if interrupt.IsSet() {
			result.skipped = len(files) - i
			break
		}
		jobs <- filename
	}
	close(jobs)
	wg.Wait()
	return result
}
