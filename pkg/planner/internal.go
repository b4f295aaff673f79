package planner

// HashData is the Phase2 result for one candidate file.
type HashData struct {
	Record FileRecord
	Digest string
	Err    error
}
