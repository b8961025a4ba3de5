// Package speech implements the voice capabilities on top of external
// programs: a streaming recognizer command, a recording command and
// gtts-cli with ffmpeg for synthesis.
package speech
