package volume

import (
	"math"

	"github.com/voxelbase/voxcache/internal/fsutil"
)

// FrameNone marks a scene frame with no corresponding sequence file.
const FrameNone = math.MaxInt32

// SequenceMode selects how scene frames outside the sequence duration map
// onto sequence frames.
type SequenceMode int

const (
	// SequenceModeClip hides the volume outside the sequence range.
	SequenceModeClip SequenceMode = iota
	// SequenceModeExtend holds the first and last frames.
	SequenceModeExtend
	// SequenceModeRepeat loops the sequence.
	SequenceModeRepeat
	// SequenceModePingPong alternates forward and backward playback.
	SequenceModePingPong
)

func (m SequenceMode) String() string {
	switch m {
	case SequenceModeClip:
		return "clip"
	case SequenceModeExtend:
		return "extend"
	case SequenceModeRepeat:
		return "repeat"
	case SequenceModePingPong:
		return "pingpong"
	}
	return "unknown"
}

// ResolveFrame maps a scene frame onto a sequence frame. Sequence frames
// are 1-based: scene frame start maps to frame 1. A zero duration, or a
// clipped scene frame, resolves to FrameNone. The offset shifts the
// resulting file number and applies after mode wrapping, never to
// FrameNone.
func ResolveFrame(mode SequenceMode, sceneFrame, start, duration, offset int) int {
	if duration == 0 {
		return FrameNone
	}

	frame := sceneFrame - start + 1

	switch mode {
	case SequenceModeClip:
		if frame < 1 || frame > duration {
			return FrameNone
		}
	case SequenceModeExtend:
		if frame < 1 {
			frame = 1
		} else if frame > duration {
			frame = duration
		}
	case SequenceModeRepeat:
		frame = frame % duration
		if frame < 0 {
			frame += duration
		}
		if frame == 0 {
			frame = duration
		}
	case SequenceModePingPong:
		if duration == 1 {
			frame = 1
			break
		}
		period := duration*2 - 2
		frame = frame % period
		if frame < 0 {
			frame += period
		}
		if frame == 0 {
			frame = period
		}
		if frame > duration {
			frame = duration*2 - frame
		}
	}

	return frame + offset
}

// SequencePath substitutes frame into the trailing digit run of path's
// file name, preserving its zero padding. Paths without a frame number
// are returned unchanged.
func SequencePath(path string, frame int) string {
	return fsutil.WithFrame(path, frame)
}
