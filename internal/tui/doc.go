// Package tui is a Bubble Tea live view of a running simulation.
//
// The density |ψ|² is drawn on a Braille canvas next to energy and entropy
// traces. A preset menu is shown when no configuration is given.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial packet
//	+/-   - More or fewer integrator steps per frame
//	?     - Toggle help
//	Q     - Quit
package tui
