package game

import "fmt"

// ShotState is the phase of the current shot cycle.
type ShotState int

const (
	StateReady ShotState = iota
	StateAiming
	StateCharging
	StateStriking
	StateWaiting
)

func (s ShotState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateAiming:
		return "aiming"
	case StateCharging:
		return "charging"
	case StateStriking:
		return "striking"
	case StateWaiting:
		return "waiting"
	}
	return fmt.Sprintf("ShotState(%d)", int(s))
}

// MarshalText lets snapshots carry the readable name.
func (s ShotState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *ShotState) UnmarshalText(text []byte) error {
	for st := StateReady; st <= StateWaiting; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown shot state %q", text)
}

// Camera identifies one of the two virtual cameras.
type Camera string

const (
	CameraAim      Camera = "aim"
	CameraOverhead Camera = "overhead"
)

// cameraFor maps a shot state to the camera that should be live for it.
func cameraFor(s ShotState) Camera {
	switch s {
	case StateAiming, StateCharging:
		return CameraAim
	default:
		return CameraOverhead
	}
}
