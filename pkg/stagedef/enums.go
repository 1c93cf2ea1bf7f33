package stagedef

import "fmt"

// BananaType is the kind of a banana pickup.
type BananaType uint32

const (
	BananaSingle BananaType = 0
	BananaBunch  BananaType = 1
)

func (t BananaType) String() string {
	switch t {
	case BananaSingle:
		return "single"
	case BananaBunch:
		return "bunch"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// AnimType is the animation mode of a collision header.
type AnimType int16

const (
	AnimLoop AnimType = iota
	AnimOnce
	AnimSeesaw
)

func (t AnimType) String() string {
	switch t {
	case AnimLoop:
		return "loop"
	case AnimOnce:
		return "once"
	case AnimSeesaw:
		return "seesaw"
	default:
		return fmt.Sprintf("Unknown(%d)", int16(t))
	}
}

// PlaybackState is the playback mode of an animation group.
type PlaybackState uint32

const (
	PlaybackForward      PlaybackState = 0
	PlaybackPause        PlaybackState = 1
	PlaybackBackward     PlaybackState = 2
	PlaybackFastForward  PlaybackState = 3
	PlaybackFastBackward PlaybackState = 4
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackForward:
		return "forward"
	case PlaybackPause:
		return "pause"
	case PlaybackBackward:
		return "backward"
	case PlaybackFastForward:
		return "fast forward"
	case PlaybackFastBackward:
		return "fast backward"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(s))
	}
}

// Kind returns the banana type.
func (b *Banana) Kind() BananaType { return BananaType(b.Type) }

// State returns the playback state the button selects.
func (b *Button) State() PlaybackState { return PlaybackState(b.PlaybackState) }

// AnimType returns the animation mode stored in AnimLoopTypeAndSeesaw.
func (h *CollisionHeader) AnimType() AnimType { return AnimType(h.AnimLoopTypeAndSeesaw) }

// PlaybackState returns the initial playback state of the header's group.
func (h *CollisionHeader) PlaybackState() PlaybackState {
	return PlaybackState(h.InitialPlaybackState)
}
