// Package audio converts audio events into precisely timed tones.
//
// The engine renders int16 PCM through io.Reader and counts rendered
// frames; that frame count is the audio clock. Scheduling anchors every
// note of an event to one clock sample, so the notes of a chord start in
// sample-accurate unison regardless of event-loop or message-arrival
// jitter. Envelopes decay exponentially to a named floor, never to
// literal zero.
package audio
