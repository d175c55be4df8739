// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build !cacheline128

package ringq

// CacheLineSize is the padding unit used to keep independently written
// counters off the same cache line. 64 bytes covers the overwhelming
// majority of x86-64 and arm64 parts. Build with the cacheline128 tag on
// targets with 128-byte lines (some POWER and ARM Neoverse cores).
const CacheLineSize = 64
