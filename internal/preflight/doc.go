// Package preflight provides readiness checks for the filesystem paths,
// external tools, and services tubeaudio depends on.
//
// The CLI "doctor" command runs every check and prints the results. The
// fetch command runs CheckSystemDeps before the first download so a missing
// yt-dlp or ffmpeg fails fast instead of once per URL.
package preflight
