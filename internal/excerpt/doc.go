// Package excerpt extracts bounded ranges from article bodies and video
// transcripts. Articles are cut on literal anchor text; transcripts are cut
// on timestamps, using a `<name>.timestamps.json` index when one is present
// and the inline `M:SS - text` lines otherwise.
package excerpt
