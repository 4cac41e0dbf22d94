// SPDX-License-Identifier: EPL-2.0

// Package clock paces sample output with a periodic timer alarm.
//
// A SampleClock binds a Timer to a sample Source and a Sink. On every
// alarm the callback takes one sample from the source and hands it to the
// sink; nothing else runs in that context. The alarm period is derived
// from the timer resolution, the sample rate, the oversampling factor and a
// calibration ratio that compensates for oscillator drift:
//
//	ticks = resolution * calibration / (sampleRate * oversampling)
//
// Close stops, disables and deletes the timer in that order; once it
// returns the callback will not run again, so the source and sink may be
// torn down safely afterwards.
package clock
