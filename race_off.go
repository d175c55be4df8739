// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build !race

package ringq

// RaceEnabled is false when the race detector is not active.
const RaceEnabled = false
