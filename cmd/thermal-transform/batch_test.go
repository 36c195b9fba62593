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
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/thermal-transform/output"
)

func TestRunBatch(t *testing.T) {
	_, reset := captureLogs()
	defer reset()

	p, prop, dir := newTestProcessor(t, output.FormatPNG)
	var files []string
	for i := 0; i < 10; i++ {
		files = append(files, fmt.Sprintf("/in/scan%03d.jpg", i))
	}
	files = append(files, "/in/bad001.jpg")

	result := runBatch(p, files, 3)
	assert.Equal(t, batchResult{converted: 10, failed: 1}, result)
	assert.Len(t, prop.calls, 10)
	for i := 0; i < 10; i++ {
		assert.FileExists(t, filepath.Join(dir, fmt.Sprintf("scan%03d.png", i)))
	}
}

func TestRunBatchSingleWorker(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	p, _, dir := newTestProcessor(t, output.FormatTIFF)
	result := runBatch(p, []string{"/in/a.jpg", "/in/bad.jpg", "/in/b.jpg"}, 0)
	assert.Equal(t, batchResult{converted: 2, failed: 1}, result)

	// Files are handled in order with one worker.
	require.Equal(t, fmt.Sprintf(
		"converted /in/a.jpg to %s\n"+
			"decode failed for /in/bad.jpg: decode /in/bad.jpg: corrupt file\n"+
			"converted /in/b.jpg to %s\n",
		filepath.Join(dir, "a.tif"), filepath.Join(dir, "b.tif"),
	), logs.String())
}

func TestRunBatchNoFiles(t *testing.T) {
	p, _, _ := newTestProcessor(t, output.FormatTIFF)
	assert.Equal(t, batchResult{}, runBatch(p, nil, 4))
}

func TestRunBatchOutputCollision(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	p, prop, dir := newTestProcessor(t, output.FormatTIFF)
	files := []string{"/in/a/scan.jpg", "/in/b/scan.jpg", "/in/c/scan.cptv", "/in/other.jpg"}

	result := runBatch(p, files, 4)
	assert.Equal(t, batchResult{converted: 2, failed: 2}, result)
	assert.ElementsMatch(t, [][2]string{
		{"/in/a/scan.jpg", filepath.Join(dir, "scan.tif")},
		{"/in/other.jpg", filepath.Join(dir, "other.tif")},
	}, prop.calls)
	assert.Contains(t, logs.String(),
		fmt.Sprintf("encode failed for /in/b/scan.jpg: %s is already the output for /in/a/scan.jpg",
			filepath.Join(dir, "scan.tif")))
}
