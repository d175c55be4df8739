// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build cacheline128

package ringq

// CacheLineSize is the padding unit used to keep independently written
// counters off the same cache line.
const CacheLineSize = 128
