package download

// Stage is a step of the download pipeline.
//
// A run moves forward through
// Discovering -> Downloading -> Merging -> Tagging -> Cleaning -> Done
// and jumps to Failed on the first error.
type Stage int32

const (
	StageIdle Stage = iota
	StageDiscovering
	StageDownloading
	StageMerging
	StageTagging
	StageCleaning
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageIdle:        "idle",
	StageDiscovering: "discovering",
	StageDownloading: "downloading",
	StageMerging:     "merging",
	StageTagging:     "tagging",
	StageCleaning:    "cleaning",
	StageDone:        "done",
	StageFailed:      "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Finished reports whether s is a terminal stage.
func (s Stage) Finished() bool {
	return s == StageDone || s == StageFailed
}
