package entity

// Job represents one in-flight work unit reserved from a Render's pointer.
// Its identity is (RenderID, Frame, Slice).
type Job struct {
	UserID      string
	RenderID    string
	Frame       int32
	Slice       int32
	FileID      string
	FileVersion int32
	TotalSlices int32
	WorkerID    string
}
