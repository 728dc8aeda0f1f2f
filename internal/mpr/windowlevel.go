package mpr

import (
	"fmt"
	"sync"
)

// lutSize covers every possible int16 HU value offset by +32768.
const lutSize = 65536

// lutCacheCap bounds the window/level LUT cache; eviction is FIFO.
const lutCacheCap = 8

// lutCache is process-wide: the same few window presets are shared by
// every pane showing the same modality.
var lutCache = struct {
	sync.Mutex
	tables map[string][]uint8
	order  []string
}{tables: make(map[string][]uint8)}

// windowLUT returns the grayscale lookup table for a (center, width)
// pair, building and caching it on first use.
func windowLUT(center, width float64) []uint8 {
	if width < 1 {
		width = 1
	}
	key := fmt.Sprintf("%.2f_%.2f", center, width)

	lutCache.Lock()
	defer lutCache.Unlock()
	if t, ok := lutCache.tables[key]; ok {
		return t
	}

	t := buildWindowLUT(center, width)
	if len(lutCache.order) >= lutCacheCap {
		oldest := lutCache.order[0]
		lutCache.order = lutCache.order[1:]
		delete(lutCache.tables, oldest)
	}
	lutCache.tables[key] = t
	lutCache.order = append(lutCache.order, key)
	return t
}

func buildWindowLUT(center, width float64) []uint8 {
	t := make([]uint8, lutSize)
	lower := center - width/2
	for i := range t {
		hu := float64(i - 32768)
		v := (hu - lower) * 255 / width
		switch {
		case v <= 0:
			// zero value, already set
		case v >= 255:
			t[i] = 255
		default:
			t[i] = uint8(v)
		}
	}
	return t
}

// clearLUTCache resets the process-wide LUT cache. Tests use it to make
// eviction order observable.
func clearLUTCache() {
	lutCache.Lock()
	defer lutCache.Unlock()
	lutCache.tables = make(map[string][]uint8)
	lutCache.order = nil
}

// ApplyWindowLevel maps HU pixels to grayscale RGBA through the cached
// LUT. The output is w*h*4 bytes with R=G=B and A=255.
func ApplyWindowLevel(pixels []int16, w, h int, center, width float64) []uint8 {
	lut := windowLUT(center, width)
	out := make([]uint8, w*h*4)
	for i, hu := range pixels[:w*h] {
		g := lut[int(hu)+32768]
		out[i*4+0] = g
		out[i*4+1] = g
		out[i*4+2] = g
		out[i*4+3] = 255
	}
	return out
}
