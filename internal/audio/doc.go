// Package audio plays raw PCM through the system output device using
// oto/v3. It is used to voice spoken replies.
package audio
