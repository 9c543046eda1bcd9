// Package ffprobe inspects media containers through the ffprobe CLI.
//
// Local media jobs arrive with no metadata of their own, so the ingest stage
// probes staged files for container duration and confirms an audio stream
// exists before recognition starts. Command execution is injectable so stage
// tests can stub the binary without spawning processes.
package ffprobe
