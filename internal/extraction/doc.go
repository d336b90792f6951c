// Package extraction is the boundary between the fetch pipeline and the
// external extraction engine.
//
// The gateway resolves a canonical URL to Metadata, rejects resources whose
// pre-download audio bitrate estimate falls below the configured floor, runs
// the audio extraction into a planned base path, and confirms the reported
// file exists. Every error it returns carries a services.Kind: engine errors
// are mapped by their structured Code first and by message keywords only
// when the engine could not name the failure.
package extraction
