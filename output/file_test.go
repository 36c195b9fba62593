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

package output

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out.tif")

	f, err := NewFile(name, true)
	require.NoError(t, err)
	assert.Equal(t, name, f.Name())
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)

	assert.NoFileExists(t, name)
	temps, _ := filepath.Glob(filepath.Join(dir, "*"+TempSuffix))
	assert.Len(t, temps, 1)
	require.NoError(t, f.Close())

	assertOnlyFile(t, dir, "out.tif")
	data, err := ioutil.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestAtomicFilesSameName(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "scan.tif")

	const writers = 20
	contents := make(map[string]bool)
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		content := fmt.Sprintf("writer %02d", i)
		contents[content] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := NewFile(name, true)
			if err != nil {
				errs <- err
				return
			}
			f.Write([]byte(content))
			errs <- f.Close()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	// The result is one writer's output, never a mix.
	data, err := ioutil.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, contents[string(data)], "got %q", data)
	assertOnlyFile(t, dir, "scan.tif")
}

func TestAtomicFileAbort(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out.tif")

	f, err := NewFile(name, true)
	require.NoError(t, err)
	f.Write([]byte("partial"))
	require.NoError(t, f.Abort())

	assert.NoFileExists(t, name)
	assertEmpty(t, dir)
	assert.NoError(t, f.Close())
}

func TestNonAtomicFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out.png")
	require.NoError(t, ioutil.WriteFile(name, []byte("previous contents"), 0644))

	f, err := NewFile(name, false)
	require.NoError(t, err)
	f.Write([]byte("new"))
	require.NoError(t, f.Close())

	data, err := ioutil.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestDeleteTempFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.tif.temp", "b.png.temp", "c.tif"} {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	require.NoError(t, DeleteTempFiles(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c.tif", entries[0].Name())
}

func assertOnlyFile(t *testing.T, dir, name string) {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, name, entries[0].Name())
}

func assertEmpty(t *testing.T, dir string) {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
