// Package whisper invokes the Whisper CLI to transcribe audio and video files.
//
// The service shells out to the whisper executable with JSON output enabled,
// then parses the result file into the transcript model used by the rest of
// the pipeline. Command execution is injectable so stage tests can stub the
// binary without spawning processes.
package whisper
