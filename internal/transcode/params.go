package transcode

import "strconv"

// Params is the fixed parameter contract for the encode capability.
// Audio is passed through untouched, video is re-encoded, and the
// output is a segmented playlist with independent segments.
type Params struct {
	// SegmentTime is the target segment duration in seconds.
	SegmentTime int
	// ListSize is the playlist window; 0 keeps every segment.
	ListSize int
	// SegmentType is the segment container ("fmp4" or "mpegts").
	SegmentType string
}

// DefaultParams returns the standard single-rendition HLS parameter set.
func DefaultParams() Params {
	return Params{
		SegmentTime: 10,
		ListSize:    0,
		SegmentType: "fmp4",
	}
}

// args builds the ffmpeg argument list for one encode.
func (p Params) args(sourcePath, outputPath string) []string {
	segmentTime := p.SegmentTime
	if segmentTime <= 0 {
		segmentTime = 10
	}
	segmentType := p.SegmentType
	if segmentType == "" {
		segmentType = "fmp4"
	}

	return []string{
		"-i", sourcePath,
		"-codec:a", "copy",
		"-codec:v", "libx264",
		"-start_number", "0",
		"-hls_time", strconv.Itoa(segmentTime),
		"-hls_list_size", strconv.Itoa(p.ListSize),
		"-hls_segment_type", segmentType,
		"-hls_flags", "independent_segments",
		"-f", "hls",
		outputPath,
	}
}
