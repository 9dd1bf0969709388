// Package transcode dispatches uploaded media to a bounded pool of
// encode workers producing segmented playlist artifacts. The dispatch
// decision (skip, start, fail) is made under a per-output-path claim so
// at most one encode ever starts per output path.
package transcode
